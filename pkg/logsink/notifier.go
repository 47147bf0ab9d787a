package logsink

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sender 发送单条日志
type Sender interface {
	Log(ctx context.Context, stack Stack, level Level, pkg Package, message string) (map[string]any, error)
}

// NotifierOptions 异步分发参数
type NotifierOptions struct {
	Stack     Stack
	QueueSize int
	Workers   int
	Timeout   time.Duration
	Logger    *zap.Logger
}

// Notifier 尽力而为的异步上报：队列满时直接丢弃，结果和错误都不返回给调用方
type Notifier struct {
	sender  Sender
	stack   Stack
	timeout time.Duration
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan Entry
	wg     sync.WaitGroup
}

// NewNotifier 创建并启动 worker
func NewNotifier(sender Sender, opts NotifierOptions) *Notifier {
	if opts.Stack == "" {
		opts.Stack = StackBackend
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	n := &Notifier{
		sender:  sender,
		stack:   opts.Stack,
		timeout: opts.Timeout,
		logger:  opts.Logger.Named("logsink"),
		queue:   make(chan Entry, opts.QueueSize),
	}
	for i := 0; i < opts.Workers; i++ {
		n.wg.Add(1)
		go n.worker()
	}
	return n
}

// Notify 投递日志，不阻塞调用方
func (n *Notifier) Notify(level Level, pkg Package, message string) {
	entry := Entry{Stack: n.stack, Level: level, Package: pkg, Message: message}

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return
	}
	select {
	case n.queue <- entry:
	default:
		n.logger.Debug("log sink queue full, dropping entry",
			zap.String("level", string(level)),
			zap.String("package", string(pkg)),
		)
	}
}

// Close 停止接收新日志，等待队列中剩余的日志发送完毕或 ctx 结束
func (n *Notifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) worker() {
	defer n.wg.Done()
	for entry := range n.queue {
		n.send(entry)
	}
}

func (n *Notifier) send(entry Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	if _, err := n.sender.Log(ctx, entry.Stack, entry.Level, entry.Package, entry.Message); err != nil {
		n.logger.Debug("log sink delivery failed",
			zap.String("level", string(entry.Level)),
			zap.String("package", string(entry.Package)),
			zap.Error(err),
		)
	}
}

// Discard 不做任何事的 Notifier，用于关闭远程日志或测试
type Discard struct{}

func (Discard) Notify(Level, Package, string) {}
