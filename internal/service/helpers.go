package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/postpilot/autopost/internal/transfer"
	"github.com/postpilot/autopost/pkg/utils"
)

// stateToken signs the project identity into the OAuth state parameter so the
// callback can be attributed without a session.
func stateToken(secretKey string, projectID int64, provider string) (string, error) {
	return utils.GenerateToken(secretKey, transfer.CustomClaims{
		ProjectID: fmt.Sprintf("%d", projectID),
		Provider:  provider,
	}, 15*time.Minute)
}

func projectFromState(secretKey, state string) (int64, error) {
	claims, err := utils.ValidateToken(secretKey, state)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(claims.ProjectID, 10, 64)
}
