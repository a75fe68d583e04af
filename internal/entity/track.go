package entity

type Track struct {
	Path       string `json:"path"`
	Artist     string `json:"artist"`
	Title      string `json:"title"`
	SearchName string `json:"search_name"`
	SearchRU   string `json:"search_ru"`
}

// ScanReport summarizes one library scan.
type ScanReport struct {
	TotalFiles  int
	PureArtists int
}
