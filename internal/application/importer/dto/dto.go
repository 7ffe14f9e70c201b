package dto

// DatasetPresence describes a dataset found in the local snapshot.
type DatasetPresence struct {
	Dataset string `json:"dataset"`
	Key     string `json:"key"`
	Count   int    `json:"count"`
}

type SaleError struct {
	ReceiptNumber string `json:"receipt_number"`
	Error         string `json:"error"`
}

// DatasetResult is the outcome of importing one dataset.
type DatasetResult struct {
	Dataset  string      `json:"dataset"`
	Success  bool        `json:"success"`
	Migrated int         `json:"migrated"`
	Total    int         `json:"total"`
	Message  string      `json:"message"`
	Errors   []SaleError `json:"errors,omitempty"`
}

type ImportSummary struct {
	Success bool             `json:"success"`
	Results []*DatasetResult `json:"results"`
	Summary string           `json:"summary"`
}
