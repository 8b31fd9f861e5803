package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/navikt/onboarding-assistant/pkg/errs"
	"github.com/navikt/onboarding-assistant/pkg/service"
	"github.com/rs/zerolog"
)

const (
	AccessRequestSubject = "Access Request: LangGraph AI Onboarding"
	attemptTimeLayout    = "2006-01-02 15:04:05"
	maxErrorBodyBytes    = 4096
)

var accessRequestBody = template.Must(template.New("access_request").Parse(`<p>Hello Team,</p>
<p>The following user attempted to access the LangGraph AI Onboarding app and was blocked by the allowlist:</p>
<ul>
  <li><b>Requester</b>: {{ .RequesterEmail }}</li>
  <li><b>Attempt Time</b>: {{ .AttemptTime }}</li>
  <li><b>Redirect URI</b>: {{ .RedirectURI }}</li>
  <li><b>Reference</b>: {{ .Reference }}</li>
</ul>
<p>Please review and grant access if appropriate. Once approved, add the user to ALLOWED_USERS or the backing store.</p>
<p>Thanks,<br/>AI-Automation Team</p>
`))

var _ service.AccessRequestAPI = &graphMailAPI{}

type graphMailAPI struct {
	client  *http.Client
	baseURL string
	tokens  service.AppTokenProvider
	log     zerolog.Logger
}

type sendMailRequest struct {
	Message         mailMessage `json:"message"`
	SaveToSentItems bool        `json:"saveToSentItems"`
}

type mailMessage struct {
	Subject      string      `json:"subject"`
	Importance   string      `json:"importance"`
	Body         mailBody    `json:"body"`
	ToRecipients []recipient `json:"toRecipients"`
}

type mailBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

type emailAddress struct {
	Address string `json:"address"`
}

// RenderAccessRequestBody renders the HTML body of the notification mail.
func RenderAccessRequestBody(req service.AccessRequest) (string, error) {
	var buf bytes.Buffer

	err := accessRequestBody.Execute(&buf, struct {
		RequesterEmail string
		AttemptTime    string
		RedirectURI    string
		Reference      string
	}{
		RequesterEmail: req.RequesterEmail,
		AttemptTime:    req.Timestamp.Format(attemptTimeLayout),
		RedirectURI:    req.RedirectURI,
		Reference:      req.Reference,
	})
	if err != nil {
		return "", err
	}

	return buf.String(), nil
}

func newSendMailRequest(req service.AccessRequest, body string) sendMailRequest {
	return sendMailRequest{
		Message: mailMessage{
			Subject:    AccessRequestSubject,
			Importance: "Normal",
			Body: mailBody{
				ContentType: "HTML",
				Content:     body,
			},
			ToRecipients: []recipient{
				{EmailAddress: emailAddress{Address: req.ApproverMailbox}},
			},
		},
		SaveToSentItems: true,
	}
}

// SendAccessRequest sends the notification from the sender's mailbox with
// an app-only token. Graph acknowledges an accepted send with 202.
func (g *graphMailAPI) SendAccessRequest(ctx context.Context, req service.AccessRequest) error {
	const op errs.Op = "graphMailAPI.SendAccessRequest"

	token, err := g.tokens.AppToken(ctx)
	if err != nil {
		return errs.E(op, err)
	}

	body, err := RenderAccessRequestBody(req)
	if err != nil {
		return errs.E(errs.Internal, op, fmt.Errorf("rendering mail body: %w", err))
	}

	payload, err := json.Marshal(newSendMailRequest(req, body))
	if err != nil {
		return errs.E(errs.Internal, op, fmt.Errorf("marshalling mail payload: %w", err))
	}

	endpoint := fmt.Sprintf("%s/users/%s/sendMail", strings.TrimRight(g.baseURL, "/"), url.PathEscape(req.SenderMailbox))

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return errs.E(errs.Internal, op, fmt.Errorf("creating request: %w", err))
	}

	r.Header.Set("Authorization", "Bearer "+token)
	r.Header.Set("Content-Type", "application/json")

	res, err := g.client.Do(r)
	if err != nil {
		g.log.Error().Err(err).Str("sender", req.SenderMailbox).Msg("sending access request mail")

		if errs.IsTimeout(err) {
			return errs.E(errs.Timeout, op, fmt.Errorf("%w: %w", service.ErrSend, service.ErrTimeout))
		}

		return errs.E(errs.IO, op, errs.Code("Failed to send request."), err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusAccepted {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))

		g.log.Error().Int("status", res.StatusCode).Str("body", string(raw)).Msg("graph did not accept the mail")

		return errs.E(
			errs.IO,
			op,
			errs.Code(fmt.Sprintf("Failed to send request: [%d]", res.StatusCode)),
			&service.SendError{StatusCode: res.StatusCode, Body: string(raw)},
		)
	}

	return nil
}

func NewGraphMailAPI(client *http.Client, baseURL string, tokens service.AppTokenProvider, log zerolog.Logger) *graphMailAPI {
	return &graphMailAPI{
		client:  client,
		baseURL: baseURL,
		tokens:  tokens,
		log:     log,
	}
}
