package database

import (
	"time"

	"gorm.io/gorm"
)

// Mediation fetch lifecycle states
const (
	FetchStatusPending  = "pending"
	FetchStatusFetching = "fetching"
	FetchStatusFetched  = "fetched"
	FetchStatusFailed   = "failed"
)

// Advocate is a registered advocate from the user directory. Only verified
// and active advocates take part in cause-list matching.
type Advocate struct {
	gorm.Model
	AdvocateID string `json:"advocate_id" gorm:"uniqueIndex"`
	Name       string `json:"name"`
	Verified   bool   `json:"verified"`
	Active     bool   `json:"active"`
}

// ListingResult is the per-advocate daily parse result. One row per
// (advocate_id, date); re-runs overwrite it (last-write-wins).
type ListingResult struct {
	gorm.Model
	AdvocateID    string `json:"advocate_id" gorm:"index:idx_listing_results_key,unique"`
	Date          string `json:"date" gorm:"index:idx_listing_results_key,unique"`
	TotalListings int    `json:"total_listings"`
	ResultJSON    string `json:"result_json" gorm:"type:text"`
}

// MediationCase is a mediation-section row awaiting out-of-band enrichment.
// Rows are created once per discovered block and mutated in place until
// fetch_status reaches fetched or failed; never deleted by this subsystem.
type MediationCase struct {
	gorm.Model
	ListingDate         string `json:"listing_date" gorm:"index:idx_mediation_cases_key,unique"`
	CaseNumberRaw       string `json:"case_number_raw" gorm:"index:idx_mediation_cases_key,unique"`
	SerialNumber        string `json:"serial_number"`
	CourtNumber         string `json:"court_number"`
	RawText             string `json:"raw_text" gorm:"type:text"`
	FetchStatus         string `json:"fetch_status" gorm:"default:pending"`
	FetchAttempts       int    `json:"fetch_attempts"`
	PetitionerAdvocates string `json:"petitioner_advocates" gorm:"type:text"`
	RespondentAdvocates string `json:"respondent_advocates" gorm:"type:text"`
	CaseDetailRaw       string `json:"case_detail_raw" gorm:"type:text"`
	LastFetchError      string `json:"last_fetch_error"`
}

// JobRun logs one daily-job execution with its summary
type JobRun struct {
	gorm.Model
	Date         string    `json:"date" gorm:"index"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message"`
	SummaryJSON  string    `json:"summary_json" gorm:"type:text"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

func (Advocate) TableName() string {
	return "advocates"
}

func (ListingResult) TableName() string {
	return "listing_results"
}

func (MediationCase) TableName() string {
	return "mediation_cases"
}

func (JobRun) TableName() string {
	return "job_runs"
}
