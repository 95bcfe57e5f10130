package mediation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lexops/causelist/pkg/logger"
)

// ErrRateLimited signals the case-status portal is throttling us. The
// enrichment batch aborts on it instead of burning through attempts.
var ErrRateLimited = errors.New("case status portal rate limited")

// CaseDetail is the portal's answer for one case.
type CaseDetail struct {
	PetitionerAdvocates []string        `json:"petitioner_advocates"`
	RespondentAdvocates []string        `json:"respondent_advocates"`
	Raw                 json.RawMessage `json:"-"`
}

// CaseStatusClient looks up case details on the court's status portal.
type CaseStatusClient interface {
	CaseStatus(ctx context.Context, caseNumber string) (*CaseDetail, error)
}

// PortalClient is the HTTP implementation of CaseStatusClient.
type PortalClient struct {
	baseURL string
	logger  *logger.Logger
	client  *http.Client
}

func NewPortalClient(baseURL string, timeout time.Duration, logger *logger.Logger) *PortalClient {
	return &PortalClient{
		baseURL: baseURL,
		logger:  logger,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (p *PortalClient) CaseStatus(ctx context.Context, caseNumber string) (*CaseDetail, error) {
	endpoint := fmt.Sprintf("%s?case_number=%s", p.baseURL, url.QueryEscape(caseNumber))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("case status request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("case %s: %w", caseNumber, ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("case status bad status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read case status response: %w", err)
	}

	var detail CaseDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("failed to decode case status response: %w", err)
	}
	detail.Raw = body

	return &detail, nil
}
