package models

// These structs define the JSON payloads of the page-nudger HTTP function.

// PageRange is an inclusive, 0-based interval of output pages.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NudgeRequest is the input for the page-nudger function.
type NudgeRequest struct {
	SourceURI string      `json:"sourceUri"`
	ShiftXMM  float64     `json:"shiftXMm"`
	ShiftYMM  float64     `json:"shiftYMm"`
	Copies    int         `json:"copies"`
	Pages     []PageRange `json:"pages,omitempty"`
}

// NudgeResponse is the output of the page-nudger function.
type NudgeResponse struct {
	Status    string `json:"status"`
	JobID     string `json:"jobId"`
	PageCount int    `json:"pageCount"`
	Pages     int    `json:"pages"`
	OutputURI string `json:"outputUri,omitempty"`
}
