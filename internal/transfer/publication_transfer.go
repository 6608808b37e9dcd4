package transfer

// PublishRequest is the manual publish payload: create publication records
// for one media post on the listed accounts, bypassing the autolist claim.
type PublishRequest struct {
	MediaID      int64   `json:"media_id"`
	AccountIDs   []int64 `json:"account_ids"`
	Description  string  `json:"description"`
	CoverMediaID int64   `json:"cover_media_id,omitempty"`
}

type PublicationCreated struct {
	RecordID  int64  `json:"record_id"`
	AccountID int64  `json:"account_id"`
	Status    string `json:"status"`
}
