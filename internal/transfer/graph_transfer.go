package transfer

import "fmt"

// GraphError is the structured error envelope returned by the Graph API.
type GraphError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	IsTransient  bool   `json:"is_transient"`
	FbtraceID    string `json:"fbtrace_id"`
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph api error: %s (code %d, subcode %d)", e.Message, e.Code, e.ErrorSubcode)
}

// GraphResponse is the uniform response shape of every protocol step: either
// a usable payload (id, status_code or permalink depending on the step) or a
// structured error. Raw is kept for diagnosis when neither is present.
type GraphResponse struct {
	ID         string      `json:"id"`
	StatusCode string      `json:"status_code"`
	Permalink  string      `json:"permalink"`
	Error      *GraphError `json:"error"`
	Raw        []byte      `json:"-"`
}

// Container status codes reported by the polling step.
const (
	ContainerInProgress = "IN_PROGRESS"
	ContainerFinished   = "FINISHED"
	ContainerError      = "ERROR"
	ContainerExpired    = "EXPIRED"
)

type FacebookToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// FacebookPage is one row of /me/accounts with the linked Instagram business
// account expanded.
type FacebookPage struct {
	ID                       string `json:"id"`
	Name                     string `json:"name"`
	AccessToken              string `json:"access_token"`
	InstagramBusinessAccount *struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"instagram_business_account"`
}

type FacebookPageList struct {
	Data  []FacebookPage `json:"data"`
	Error *GraphError    `json:"error"`
}
