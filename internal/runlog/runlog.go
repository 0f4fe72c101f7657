package runlog

import (
	"fmt"
	"strings"
	"sync"
)

// Buffer накапливает диагностические строки одного прохода.
// Сбрасывается одним batch-сообщением в конце прохода, чтобы не слать
// отдельное уведомление на каждое микро-решение
type Buffer struct {
	mu    sync.Mutex
	lines []string
}

func New() *Buffer {
	return &Buffer{}
}

// Append добавляет строку в лог прохода
func (b *Buffer) Append(format string, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, fmt.Sprintf(format, args...))
}

// Lines возвращает копию накопленных строк
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Len возвращает количество накопленных строк
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Flush отправляет все строки одним сообщением и очищает буфер.
// Пустой буфер ничего не отправляет
func (b *Buffer) Flush(send func(message string)) {
	b.mu.Lock()
	lines := b.lines
	b.lines = nil
	b.mu.Unlock()

	if len(lines) == 0 || send == nil {
		return
	}
	send(strings.Join(lines, "\n"))
}
