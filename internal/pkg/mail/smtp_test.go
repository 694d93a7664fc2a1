package mail

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestNewSMTP_RequiresHostPort(t *testing.T) {
	if _, err := NewSMTP(SMTPConfig{}); !errors.Is(err, ErrSMTPHostPortRequired) {
		t.Fatalf("error = %v, want ErrSMTPHostPortRequired", err)
	}
}

func TestSMTP_Send_Preconditions(t *testing.T) {
	s, _ := NewSMTP(SMTPConfig{Host: "localhost", Port: 2525})

	if err := s.Send(context.Background(), Message{}); !errors.Is(err, ErrSMTPNoRecipients) {
		t.Fatalf("error = %v, want ErrSMTPNoRecipients", err)
	}
	if err := s.Send(context.Background(), Message{To: []string{"a@b.test"}}); !errors.Is(err, ErrSMTPNoSender) {
		t.Fatalf("error = %v, want ErrSMTPNoSender", err)
	}
}

func TestCompose(t *testing.T) {
	raw := string(compose("otp@svc.test", Message{
		To:       []string{"a@b.test", "c@d.test"},
		Subject:  "Your verification code",
		TextBody: "Code: 123456",
	}))

	for _, want := range []string{
		"From: otp@svc.test\r\n",
		"To: a@b.test, c@d.test\r\n",
		"Subject: Your verification code\r\n",
		"\r\n\r\nCode: 123456",
	} {
		if !strings.Contains(raw, want) {
			t.Fatalf("message missing %q:\n%s", want, raw)
		}
	}
}

// fakeRelay speaks just enough SMTP to accept one message.
func fakeRelay(t *testing.T) (addr string, got <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	out := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

		r := bufio.NewReader(conn)
		write := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
		write("220 fake ESMTP")

		var data strings.Builder
		inData := false
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if inData {
				if line == ".\r\n" {
					inData = false
					out <- data.String()
					write("250 OK")
					continue
				}
				data.WriteString(line)
				continue
			}
			switch cmd := strings.ToUpper(strings.TrimSpace(line)); {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				write("250 fake")
			case cmd == "DATA":
				inData = true
				write("354 go ahead")
			case cmd == "QUIT":
				write("221 bye")
				return
			default:
				write("250 OK")
			}
		}
	}()

	return ln.Addr().String(), out
}

func TestSMTP_Send(t *testing.T) {
	addr, got := fakeRelay(t)
	host, portStr, _ := net.SplitHostPort(addr)
	port, _ := strconv.Atoi(portStr)

	s, err := NewSMTP(SMTPConfig{Host: host, Port: port, From: "otp@svc.test"})
	if err != nil {
		t.Fatalf("NewSMTP() error = %v", err)
	}

	err = s.Send(context.Background(), Message{To: []string{"a@b.test"}, Subject: "Your verification code", TextBody: "Code: 654321"})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	select {
	case body := <-got:
		if !strings.Contains(body, "Code: 654321") {
			t.Fatalf("relay received %q", body)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("relay received nothing")
	}
}
