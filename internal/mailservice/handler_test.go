package mailservice

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/sushihentaime/blogapi/internal/common"
)

func TestSendWelcomeEmail(t *testing.T) {
	mockMC := new(MockMessageConsumer)
	mockMailer := new(MockMailer)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mockMC.On("Consume", common.UserSignedUpKey, common.UserExchange, common.UserSignedUpQueue).Return(nil, nil)

	ctx, cancel := context.WithCancel(context.Background())

	s := &MailService{
		mb:     mockMC,
		m:      mockMailer,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	s.SendWelcomeEmail()

	assert.Eventually(t, mockMailer.IsCalled, 2*time.Second, 10*time.Millisecond, "expected a welcome email to be sent")
	assert.Equal(t, "test@example.com", mockMailer.GetEmail())

	mockMC.AssertExpectations(t)

	t.Cleanup(func() {
		s.Close()
	})
}
