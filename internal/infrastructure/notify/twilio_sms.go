package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"arm_backoffice/internal/usecase/interfaces"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

var ErrMissingTwilioCredentials = errors.New("missing TWILIO_ACCOUNT_SID or TWILIO_AUTH_TOKEN")
var ErrMissingTwilioFromNumber = errors.New("missing TWILIO_FROM_NUMBER")

// TwilioSMSDispatcher sends estimate/invoice links to customers by SMS.
//
// Mock mode (SMS_MOCK=1) logs the message instead of calling Twilio, which
// keeps local development and CI free of real deliveries.
type TwilioSMSDispatcher struct {
	client   *twilio.RestClient
	from     string
	mockMode bool
}

var _ interfaces.INotificationDispatcher = (*TwilioSMSDispatcher)(nil)

func NewTwilioSMSDispatcher(accountSID, authToken, from string) (*TwilioSMSDispatcher, error) {
	if isSMSMockEnabled() {
		log.Printf("[notify][twilio] mock mode enabled")
		return &TwilioSMSDispatcher{mockMode: true}, nil
	}

	if accountSID == "" || authToken == "" {
		log.Printf("[notify][twilio] missing credentials")
		return nil, ErrMissingTwilioCredentials
	}
	if from == "" {
		log.Printf("[notify][twilio] missing TWILIO_FROM_NUMBER")
		return nil, ErrMissingTwilioFromNumber
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	log.Printf("[notify][twilio] client initialized")

	return &TwilioSMSDispatcher{client: client, from: from}, nil
}

func (d *TwilioSMSDispatcher) Notify(ctx context.Context, n interfaces.Notification) error {
	body := fmt.Sprintf("Your estimate %s for %s is ready. Review and approve: %s", n.DocumentNo, n.Total, n.PublicLink)

	if d.mockMode {
		log.Printf("[notify][twilio] mock send to=%s body=%q", n.Recipient, body)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.Recipient)
	params.SetFrom(d.from)
	params.SetBody(body)

	resp, err := d.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("[notify][twilio] send failed to=%s err=%v", n.Recipient, err)
		return err
	}
	if resp.Sid != nil {
		log.Printf("[notify][twilio] send success to=%s sid=%s", n.Recipient, *resp.Sid)
	}
	return nil
}

func isSMSMockEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("SMS_MOCK")))
	switch v {
	case "1", "true", "yes", "on", "mock":
		return true
	}
	return false
}
