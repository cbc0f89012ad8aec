package branch

type Branch struct {
	Id      int
	Name    string
	Address string
	// ManagerId references the staff account managing the branch, if any.
	ManagerId *string
}
