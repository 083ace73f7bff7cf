package notify

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/psfastpay/core/logger"
)

func TestMain(m *testing.M) {
	logger.SVCNotify = slog.New(slog.NewTextHandler(io.Discard, nil))
	os.Exit(m.Run())
}

type fakeSender struct {
	sent   []string
	failTo map[string]bool
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, _ ...interface{}) (*tele.Message, error) {
	if f.failTo[to.Recipient()] {
		return nil, errors.New("telegram: forbidden")
	}
	text, _ := what.(string)
	f.sent = append(f.sent, to.Recipient()+":"+text)
	return &tele.Message{}, nil
}

func TestNotifyUser(t *testing.T) {
	fs := &fakeSender{}
	n := NewTelegram(fs, nil, nil)

	if err := n.NotifyUser(context.Background(), 42, "привет"); err != nil {
		t.Fatal(err)
	}
	if len(fs.sent) != 1 || fs.sent[0] != "42:привет" {
		t.Fatalf("sent = %v", fs.sent)
	}
}

func TestNotifyUserError(t *testing.T) {
	fs := &fakeSender{failTo: map[string]bool{"42": true}}
	n := NewTelegram(fs, nil, nil)

	if err := n.NotifyUser(context.Background(), 42, "привет"); err == nil {
		t.Fatal("expected delivery error")
	}
}

func TestNotifyAdminsSkipsFailures(t *testing.T) {
	fs := &fakeSender{failTo: map[string]bool{"2": true}}
	n := NewTelegram(fs, nil, []int64{1, 2, 3})

	n.NotifyAdmins(context.Background(), "заказ")

	if len(fs.sent) != 2 {
		t.Fatalf("sent = %v, want deliveries to 1 and 3", fs.sent)
	}
	if fs.sent[0] != "1:заказ" || fs.sent[1] != "3:заказ" {
		t.Fatalf("sent = %v", fs.sent)
	}
}
