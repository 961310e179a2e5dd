package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"stayhub/internal/app/policies"
	"stayhub/internal/domain/shared/money"
)

// applicationFeePercent is the platform's cut of every charge.
const applicationFeePercent = 5

// Gateway talks to the Stripe REST API. Charges run on behalf of the host's
// connected account with the platform fee withheld; wallet connect and
// disconnect go through the OAuth endpoints.
type Gateway struct {
	Client    *http.Client
	APIBase   string
	SecretKey string
	ClientID  string
	Logger    *slog.Logger
}

func (g *Gateway) Charge(ctx context.Context, amount money.Money, source, destinationAccount string) error {
	if destinationAccount == "" {
		return errors.New("stripe: destination account is required")
	}
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount.Amount, 10))
	form.Set("currency", strings.ToLower(amount.Currency))
	form.Set("source", source)
	form.Set("application_fee_amount", strconv.FormatInt(amount.PercentOf(applicationFeePercent).Amount, 10))
	headers := map[string]string{"Stripe-Account": destinationAccount}
	var resp chargeResponse
	if err := g.postForm(ctx, "/v1/charges", form, headers, &resp); err != nil {
		return err
	}
	if resp.Status != "succeeded" && resp.Status != "pending" {
		return fmt.Errorf("stripe: charge %s ended in status %q", resp.ID, resp.Status)
	}
	if g.Logger != nil {
		g.Logger.Info("charge created", "charge_id", resp.ID, "amount", amount.Amount, "currency", amount.Currency)
	}
	return nil
}

func (g *Gateway) Connect(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", errors.New("stripe: authorization code is required")
	}
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	if g.ClientID != "" {
		form.Set("client_id", g.ClientID)
	}
	var resp oauthTokenResponse
	if err := g.postForm(ctx, "/oauth/token", form, nil, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("stripe: oauth %s: %s", resp.Error, resp.ErrorDesc)
	}
	if resp.StripeUserID == "" {
		return "", errors.New("stripe: oauth response missing account id")
	}
	return resp.StripeUserID, nil
}

func (g *Gateway) Disconnect(ctx context.Context, walletID string) error {
	if walletID == "" {
		return errors.New("stripe: wallet id is required")
	}
	form := url.Values{}
	form.Set("stripe_user_id", walletID)
	if g.ClientID != "" {
		form.Set("client_id", g.ClientID)
	}
	return g.postForm(ctx, "/oauth/deauthorize", form, nil, nil)
}

type chargeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type oauthTokenResponse struct {
	StripeUserID string `json:"stripe_user_id"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *Gateway) postForm(ctx context.Context, path string, form url.Values, extraHeaders map[string]string, out any) error {
	if g.Client == nil || g.SecretKey == "" {
		return errors.New("stripe: gateway not configured")
	}
	endpoint := strings.TrimRight(g.apiBase(), "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(g.SecretKey, "")
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return fmt.Errorf("stripe: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("stripe: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var ae apiError
		if jsonErr := json.Unmarshal(body, &ae); jsonErr == nil && ae.Error.Message != "" {
			return fmt.Errorf("stripe: %s: %s", ae.Error.Type, ae.Error.Message)
		}
		return fmt.Errorf("stripe: unexpected status %d", resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("stripe: decode response: %w", err)
		}
	}
	return nil
}

func (g *Gateway) apiBase() string {
	if g.APIBase != "" {
		return g.APIBase
	}
	return "https://api.stripe.com"
}

var _ policies.PaymentGateway = (*Gateway)(nil)
