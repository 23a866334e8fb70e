package mauticmail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// ListAccounts retrieves all accounts for the configured user.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := c.get(ctx, "/accounts", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// CreateAccount creates a new account on the upstream platform.
func (c *Client) CreateAccount(ctx context.Context, input AccountInput) (*Account, error) {
	if c.userID == "" {
		return nil, ErrMissingUserID
	}
	data, err := c.doRequest(ctx, http.MethodPost, c.userPath("/accounts"), nil, input)
	if err != nil {
		return nil, err
	}
	var account Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("failed to parse account response: %w", err)
	}
	return &account, nil
}

// GetAccount retrieves a single account by id.
func (c *Client) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	if accountID == "" {
		return nil, ErrMissingAccountID
	}
	var account Account
	if err := c.get(ctx, "/accounts/"+url.PathEscape(accountID), nil, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateAccount updates an existing account.
func (c *Client) UpdateAccount(ctx context.Context, accountID string, input AccountInput) (*Account, error) {
	if c.userID == "" {
		return nil, ErrMissingUserID
	}
	if accountID == "" {
		return nil, ErrMissingAccountID
	}
	data, err := c.doRequest(ctx, http.MethodPut, c.userPath("/accounts/"+url.PathEscape(accountID)), nil, input)
	if err != nil {
		return nil, err
	}
	var account Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("failed to parse account response: %w", err)
	}
	return &account, nil
}

// DeleteAccount deletes an account by id.
func (c *Client) DeleteAccount(ctx context.Context, accountID string) error {
	if c.userID == "" {
		return ErrMissingUserID
	}
	if accountID == "" {
		return ErrMissingAccountID
	}
	_, err := c.doRequest(ctx, http.MethodDelete, c.userPath("/accounts/"+url.PathEscape(accountID)), nil, nil)
	return err
}

// GetAccountWebhook retrieves the webhook endpoint provisioned for an
// account.
func (c *Client) GetAccountWebhook(ctx context.Context, accountID string) (*AccountWebhook, error) {
	if accountID == "" {
		return nil, ErrMissingAccountID
	}
	var webhook AccountWebhook
	if err := c.get(ctx, "/accounts/"+url.PathEscape(accountID)+"/webhook", nil, &webhook); err != nil {
		return nil, err
	}
	return &webhook, nil
}

// CompareAccounts retrieves aggregate metrics for a set of accounts
// side by side.
func (c *Client) CompareAccounts(ctx context.Context, accountIDs []string) ([]AccountMetric, error) {
	if len(accountIDs) == 0 {
		return nil, ErrMissingAccountID
	}
	params := url.Values{}
	for _, id := range accountIDs {
		if cleanParamValue(id) != "" {
			params.Add("accountIds", id)
		}
	}
	var metrics []AccountMetric
	if err := c.get(ctx, "/accounts/compare", params, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}
