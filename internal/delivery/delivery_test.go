package delivery

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"mykitchen/internal/config"
	"mykitchen/internal/shopping"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sampleList() shopping.ListResponse {
	return shopping.ListResponse{
		ID:            7,
		Name:          "Weekend <Baking>",
		GeneratedFrom: "Pancakes, Sponge Cake",
		UpdatedAt:     time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Items: []shopping.ItemResponse{
			{ID: 1, Name: "Flour", Amount: 350, Unit: "g"},
			{ID: 2, Name: "Sugar", Amount: 0.5, Unit: "kg", Checked: true},
		},
	}
}

func extractText(t *testing.T, data []byte) string {
	t.Helper()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		require.NoError(t, err)
		b.WriteString(text)
	}
	return b.String()
}

func TestRenderShoppingListPDF(t *testing.T) {
	data, err := RenderShoppingListPDF(sampleList())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	text := extractText(t, data)
	for _, want := range []string{"Flour", "Sugar", "350", "0.5", "Pancakes"} {
		assert.Contains(t, text, want)
	}
}

func TestRenderEmptyListPDF(t *testing.T) {
	data, err := RenderShoppingListPDF(shopping.ListResponse{ID: 1, Name: "Empty"})
	require.NoError(t, err)
	assert.Contains(t, extractText(t, data), "Empty")
}

func TestShoppingListEmailEscapesContent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ShoppingListEmail(sampleList()).Render(context.Background(), &buf))

	html := buf.String()
	assert.Contains(t, html, "Weekend &lt;Baking&gt;")
	assert.NotContains(t, html, "<Baking>")
	assert.Contains(t, html, "350 g Flour")
	assert.Contains(t, html, "line-through")
}

func TestShoppingListText(t *testing.T) {
	text := ShoppingListText(sampleList())
	assert.Contains(t, text, "[ ] 350 g Flour")
	assert.Contains(t, text, "[x] 0.5 kg Sugar")
	assert.Contains(t, text, "Generated from Pancakes, Sponge Cake")
}

func TestShoppingListMessage(t *testing.T) {
	msg, err := ShoppingListMessage(context.Background(), "cook@example.com", sampleList())
	require.NoError(t, err)

	assert.Equal(t, "cook@example.com", msg.To)
	assert.Equal(t, "Your shopping list: Weekend <Baking>", msg.Subject)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "shopping-list-7.pdf", msg.Attachments[0].Name)
	assert.NotEmpty(t, msg.Attachments[0].Data)
}

func TestBuildMsg(t *testing.T) {
	msg, err := ShoppingListMessage(context.Background(), "cook@example.com", sampleList())
	require.NoError(t, err)

	m, err := buildMsg("kitchen@example.com", msg)
	require.NoError(t, err)
	var raw bytes.Buffer
	_, err = m.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "shopping-list-7.pdf")

	msg.To = "not an address"
	_, err = buildMsg("kitchen@example.com", msg)
	assert.Error(t, err)

	_, err = buildMsg("", msg)
	assert.Error(t, err)
}

func TestNewMailer(t *testing.T) {
	mailer, err := NewMailer(config.MailConfig{})
	require.NoError(t, err)
	assert.IsType(t, NoopMailer{}, mailer)
	assert.NoError(t, mailer.Send(context.Background(), Message{To: "a@b.c"}))

	mailer, err = NewMailer(config.MailConfig{Enabled: true, Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "a@b.c"})
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, mailer)
}

type recordingMailer struct {
	mu    sync.Mutex
	sent  []Message
	err   error
	delay time.Duration
}

func (r *recordingMailer) Send(ctx context.Context, msg Message) error {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func (r *recordingMailer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func TestDispatcherSendsInBackground(t *testing.T) {
	mailer := &recordingMailer{delay: 20 * time.Millisecond}
	d := NewDispatcher(mailer)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.SendShoppingList(ctx, "cook@example.com", sampleList()))
	// Cancelling the request must not abort the queued send.
	cancel()

	d.Close()
	assert.Equal(t, 1, mailer.count())

	assert.ErrorIs(t, d.SendShoppingList(context.Background(), "cook@example.com", sampleList()), ErrDispatcherClosed)
}

func TestDispatcherSwallowsBackgroundFailures(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	d := NewDispatcher(mailer)

	require.NoError(t, d.SendShoppingList(context.Background(), "cook@example.com", sampleList()))
	d.Close()
	assert.Equal(t, 1, mailer.count())
}

func TestDeliverReportsFailures(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	d := NewDispatcher(mailer)
	defer d.Close()

	err := d.Deliver(context.Background(), "cook@example.com", sampleList())
	assert.ErrorContains(t, err, "smtp down")
}
