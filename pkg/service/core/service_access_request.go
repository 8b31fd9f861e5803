package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/navikt/onboarding-assistant/pkg/errs"
	"github.com/navikt/onboarding-assistant/pkg/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	accessRequestSent   = "sent"
	accessRequestFailed = "failed"
)

var _ service.AccessRequestService = &accessRequestService{}

type accessRequestService struct {
	accessRequestAPI service.AccessRequestAPI
	notifierAPI      service.ApproverNotifierAPI
	approverMailbox  string
	defaultSender    string
	allowAnySender   bool
	redirectURI      string
	requests         *prometheus.CounterVec
	log              zerolog.Logger

	now          func() time.Time
	newReference func() string
}

func (s *accessRequestService) RequestAccess(ctx context.Context, sess service.Session, input service.NewAccessRequestDTO) (*service.AccessRequestReceipt, error) {
	const op errs.Op = "accessRequestService.RequestAccess"

	requester := sess.AccessDeniedEmail
	if requester == "" {
		return nil, errs.E(errs.InvalidRequest, op, errs.Parameter("session"), errs.Code("There is no denied sign-in to request access for."), errs.Str("no denied email in session"))
	}

	sender := strings.TrimSpace(input.SenderMailbox)
	if sender == "" {
		return nil, errs.E(errs.InvalidRequest, op, errs.Parameter("senderMailbox"), errs.Code("Please enter a sender mailbox."), errs.Str("empty sender mailbox"))
	}

	if !s.senderAllowed(sender, requester) {
		s.log.Info().Str("sender", sender).Str("requester", requester).Msg("rejected sender mailbox")

		return nil, errs.E(errs.Unauthorized, op, errs.Parameter("senderMailbox"), errs.Code("The sender mailbox must be your own address or the default sender."), errs.Str("sender not permitted"))
	}

	req := service.AccessRequest{
		Reference:       s.newReference(),
		SenderMailbox:   sender,
		RequesterEmail:  requester,
		ApproverMailbox: s.approverMailbox,
		RedirectURI:     s.redirectURI,
		Timestamp:       s.now(),
	}

	err := s.accessRequestAPI.SendAccessRequest(ctx, req)
	if err != nil {
		s.requests.WithLabelValues(accessRequestFailed).Inc()

		return nil, errs.E(op, err)
	}

	s.requests.WithLabelValues(accessRequestSent).Inc()
	s.log.Info().Str("reference", req.Reference).Str("requester", requester).Msg("access request sent")

	if s.notifierAPI != nil {
		if err := s.notifierAPI.InformNewAccessRequest(ctx, req); err != nil {
			s.log.Warn().Err(err).Str("reference", req.Reference).Msg("informing approvers on slack")
		}
	}

	return &service.AccessRequestReceipt{
		Reference:     req.Reference,
		SenderMailbox: sender,
		Requester:     requester,
		SentAt:        req.Timestamp,
		Message:       fmt.Sprintf("Request sent from %s. You'll be notified after approval from CIO-Apps-Team.", sender),
	}, nil
}

func (s *accessRequestService) senderAllowed(sender, requester string) bool {
	if s.allowAnySender {
		return true
	}

	if strings.EqualFold(sender, requester) {
		return true
	}

	return s.defaultSender != "" && strings.EqualFold(sender, s.defaultSender)
}

// NewAccessRequestService wires the mail API and, when not nil, the chat
// notifier used for a best effort notice to the approvers.
func NewAccessRequestService(
	accessRequestAPI service.AccessRequestAPI,
	notifierAPI service.ApproverNotifierAPI,
	approverMailbox string,
	defaultSender string,
	allowAnySender bool,
	redirectURI string,
	requests *prometheus.CounterVec,
	log zerolog.Logger,
) *accessRequestService {
	return &accessRequestService{
		accessRequestAPI: accessRequestAPI,
		notifierAPI:      notifierAPI,
		approverMailbox:  approverMailbox,
		defaultSender:    defaultSender,
		allowAnySender:   allowAnySender,
		redirectURI:      redirectURI,
		requests:         requests,
		log:              log,
		now:              time.Now,
		newReference:     shortuuid.New,
	}
}

func NewAccessRequestsCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "onboarding_assistant",
		Name:      "access_requests_total",
		Help:      "Access requests by result.",
	}, []string{"result"})
}
