package opn

// chargeRequestBody is the POST /charges payload
type chargeRequestBody struct {
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Card      string            `json:"card,omitempty"`
	Source    string            `json:"source,omitempty"`
	Capture   bool              `json:"capture"`
	ReturnURI string            `json:"return_uri,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// sourceRequestBody is the POST /sources payload
type sourceRequestBody struct {
	Type             string            `json:"type"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	InstallmentTerms int               `json:"installment_terms,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// refundRequestBody is the POST /charges/{id}/refunds payload
type refundRequestBody struct {
	Amount   int64             `json:"amount"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// chargePayload is the gateway's charge object
type chargePayload struct {
	Object         string `json:"object"`
	ID             string `json:"id"`
	Status         string `json:"status"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	AuthorizeURI   string `json:"authorize_uri"`
	FailureCode    string `json:"failure_code"`
	FailureMessage string `json:"failure_message"`
}

// scannableCode carries the PromptPay QR image reference
type scannableCode struct {
	Image struct {
		DownloadURI string `json:"download_uri"`
	} `json:"image"`
}

// sourcePayload is the gateway's source object
type sourcePayload struct {
	Object        string         `json:"object"`
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Flow          string         `json:"flow"`
	Status        string         `json:"status"`
	Amount        int64          `json:"amount"`
	Currency      string         `json:"currency"`
	AuthorizeURI  string         `json:"authorize_uri"`
	ChargeID      string         `json:"charge_id"`
	ScannableCode *scannableCode `json:"scannable_code"`
}

// refundPayload is the gateway's refund object
type refundPayload struct {
	Object   string `json:"object"`
	ID       string `json:"id"`
	ChargeID string `json:"charge"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// errorPayload is the gateway's error envelope
type errorPayload struct {
	Object  string `json:"object"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
