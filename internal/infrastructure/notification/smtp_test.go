package notification

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/port"
)

func TestBuildMessage(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	n := &SMTPNotifier{
		config: Config{From: "noreply@ordem.example.com"},
		logger: logger,
	}

	msg := string(n.buildMessage(port.Credential{
		Name:         "Ana Souza",
		Email:        "ana@example.com",
		MemberNumber: "2026070001",
		TempPassword: "tmpPass123",
	}))

	for _, want := range []string{
		"From: noreply@ordem.example.com",
		"To: ana@example.com",
		"Subject: ",
		"Ana Souza",
		"2026070001",
		"tmpPass123",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q", want)
		}
	}

	// headers and body are separated by a blank line
	if !strings.Contains(msg, "\r\n\r\n") {
		t.Error("message lacks the header/body separator")
	}
}
