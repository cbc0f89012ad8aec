package event_bus

const (
	BranchCreatedEvent EventType = "branch.created"
	TimingsSavedEvent  EventType = "timings.saved"
)

type BranchCreated struct {
	Id      int
	Name    string
	Address string
}

type TimingsSaved struct {
	BranchId int
	// RowCount is the number of timing rows written, weekly rows included.
	RowCount      int
	OverrideCount int
	Transactional bool
}
