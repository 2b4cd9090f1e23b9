package match

// Status is the terminal state of one triple.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// FailureReason enumerates why a triple failed.
type FailureReason string

const (
	ReasonStateNotFound       FailureReason = "state_not_found"
	ReasonCityNotFound        FailureReason = "city_not_found"
	ReasonEmptyField          FailureReason = "empty_field"
	ReasonSanityCheckRejected FailureReason = "sanity_check_rejected"
)

// Row is one input triple.
type Row struct {
	CountryCode string
	StateName   string
	CityName    string
}

// StateMatch is a resolved state with the admin code the city tier filters on.
type StateMatch struct {
	GeonameID  int64
	Admin1Code string
}

// Result is the outcome for one row. Index is the row's position in the
// batch input.
type Result struct {
	Index           int
	Row             Row
	StateGeonameID  int64
	StateAdmin1Code string
	CityGeonameID   int64
	Status          Status
	FailureReason   FailureReason
	Suggestion      string
}
