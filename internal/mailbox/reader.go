// Package mailbox manages transient IMAP connections to configured mail
// accounts: connect, select inbox, search unseen, fetch and parse, tear
// down. Connections are short-lived; every poll cycle opens a fresh one and
// the next scheduled cycle is the only retry mechanism.
package mailbox

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-core/internal/activity"
	"github.com/spec-kit/helpdesk-core/internal/domain"
)

// Reader fetches unseen messages from one account per call. The unseen flag
// doubles as the de-duplication mechanism: the non-peek body fetch marks
// each message seen, so it is never reprocessed. A crash between fetch and
// downstream persistence can drop a message; that at-most-once window is an
// accepted tradeoff of this design.
type Reader struct {
	audit          *activity.Logger
	log            *zap.Logger
	dialTimeout    time.Duration
	commandTimeout time.Duration
}

// NewReader builds a Reader.
func NewReader(audit *activity.Logger, log *zap.Logger, dialTimeout, commandTimeout time.Duration) *Reader {
	if dialTimeout <= 0 {
		dialTimeout = 30 * time.Second
	}
	if commandTimeout <= 0 {
		commandTimeout = 60 * time.Second
	}
	return &Reader{audit: audit, log: log, dialTimeout: dialTimeout, commandTimeout: commandTimeout}
}

// Fetch connects to the account's inbox and returns all unseen messages,
// marking them seen in the same fetch. An unconfigured account yields a
// warning and an empty result, not an error.
func (r *Reader) Fetch(ctx context.Context, account domain.MailAccount) ([]InboundMessage, error) {
	started := time.Now()
	accountID := account.ID

	if !account.HasCredentials() {
		r.audit.Warn(ctx, &accountID, activity.ChannelMailbox, "connect",
			fmt.Sprintf("mailbox %q has no inbound credentials configured; skipping", account.Name),
			nil, time.Since(started))
		return nil, nil
	}

	conn, err := r.connect(ctx, account)
	if err != nil {
		class, hint := Classify(err)
		r.audit.Error(ctx, &accountID, activity.ChannelMailbox, "connect",
			fmt.Sprintf("mailbox %q connection failed: %v", account.Name, err),
			map[string]any{"class": string(class), "hint": hint}, time.Since(started))
		return nil, fmt.Errorf("connect %s: %w", account.Name, err)
	}
	defer func() {
		if err := conn.Logout(); err != nil {
			r.log.Debug("imap logout failed", zap.String("account", account.Name), zap.Error(err))
		}
	}()

	if err := conn.Login(account.Username, account.Password); err != nil {
		class, hint := Classify(err)
		r.audit.Error(ctx, &accountID, activity.ChannelMailbox, "login",
			fmt.Sprintf("mailbox %q login failed: %v", account.Name, err),
			map[string]any{"class": string(class), "hint": hint}, time.Since(started))
		return nil, fmt.Errorf("login %s: %w", account.Name, err)
	}

	if _, err := conn.Select("INBOX", false); err != nil {
		r.audit.Error(ctx, &accountID, activity.ChannelMailbox, "select_inbox",
			fmt.Sprintf("mailbox %q inbox selection failed: %v", account.Name, err),
			nil, time.Since(started))
		return nil, fmt.Errorf("select inbox %s: %w", account.Name, err)
	}
	r.audit.Info(ctx, &accountID, activity.ChannelMailbox, "select_inbox",
		fmt.Sprintf("mailbox %q inbox opened", account.Name), nil, time.Since(started))

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	ids, err := conn.Search(criteria)
	if err != nil {
		r.audit.Error(ctx, &accountID, activity.ChannelMailbox, "search",
			fmt.Sprintf("mailbox %q unseen search failed: %v", account.Name, err),
			nil, time.Since(started))
		return nil, fmt.Errorf("search %s: %w", account.Name, err)
	}
	if len(ids) == 0 {
		r.audit.Info(ctx, &accountID, activity.ChannelMailbox, "search",
			fmt.Sprintf("mailbox %q has no unseen messages", account.Name), nil, time.Since(started))
		return nil, nil
	}
	r.audit.Info(ctx, &accountID, activity.ChannelMailbox, "search",
		fmt.Sprintf("mailbox %q has %d unseen message(s)", account.Name, len(ids)),
		map[string]any{"count": len(ids)}, time.Since(started))

	messages, err := r.fetchMessages(conn, account, ids)
	if err != nil {
		r.audit.Error(ctx, &accountID, activity.ChannelMailbox, "fetch",
			fmt.Sprintf("mailbox %q fetch failed: %v", account.Name, err),
			nil, time.Since(started))
		return nil, fmt.Errorf("fetch %s: %w", account.Name, err)
	}

	r.audit.Info(ctx, &accountID, activity.ChannelMailbox, "fetch",
		fmt.Sprintf("mailbox %q batch complete: %d of %d message(s) parsed", account.Name, len(messages), len(ids)),
		map[string]any{"parsed": len(messages), "unseen": len(ids)}, time.Since(started))
	return messages, nil
}

func (r *Reader) connect(ctx context.Context, account domain.MailAccount) (*client.Client, error) {
	dialer := &net.Dialer{Timeout: r.dialTimeout}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}
	addr := fmt.Sprintf("%s:%d", account.Host, account.Port)

	var (
		conn *client.Client
		err  error
	)
	if account.UseTLS {
		conn, err = client.DialWithDialerTLS(dialer, addr, nil)
	} else {
		conn, err = client.DialWithDialer(dialer, addr)
	}
	if err != nil {
		return nil, err
	}
	conn.Timeout = r.commandTimeout
	return conn, nil
}

// fetchMessages retrieves full bodies for the given sequence numbers. The
// body section is fetched without PEEK, so the server marks each message
// seen as part of the same fetch.
func (r *Reader) fetchMessages(conn *client.Client, account domain.MailAccount, ids []uint32) ([]InboundMessage, error) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{section.FetchItem()}

	ch := make(chan *imap.Message, len(ids))
	done := make(chan error, 1)
	go func() {
		done <- conn.Fetch(seqset, items, ch)
	}()

	var result []InboundMessage
	for msg := range ch {
		body := msg.GetBody(section)
		if body == nil {
			r.log.Warn("imap message missing body section",
				zap.String("account", account.Name), zap.Uint32("seq", msg.SeqNum))
			continue
		}
		parsed, err := ParseMessage(account.ID, body)
		if err != nil {
			// One unparseable message must not abort the batch.
			r.log.Warn("failed to parse inbound message",
				zap.String("account", account.Name), zap.Uint32("seq", msg.SeqNum), zap.Error(err))
			continue
		}
		result = append(result, *parsed)
	}

	if err := <-done; err != nil {
		return nil, err
	}
	return result, nil
}
