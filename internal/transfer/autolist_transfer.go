package transfer

type AutoListCreation struct {
	Name        string  `json:"name"`
	ShareToFeed bool    `json:"share_to_feed"`
	AccountIDs  []int64 `json:"account_ids"`
}

type AutoListEntryCreation struct {
	AutoListID      int64  `json:"auto_list_id"`
	DayOfWeeks      int    `json:"day_of_weeks"`
	PublicationTime string `json:"publication_time"`
}
