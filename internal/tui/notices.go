package tui

// Notice is one pending status message.
type Notice struct {
	Text  string
	IsErr bool
}

// Notices is a FIFO queue of pending messages. Several can pile up
// within one input-handling pass; the render path consumes at most one
// per frame so none are lost.
type Notices struct {
	queue []Notice
}

// Push enqueues a message. Empty strings are dropped.
func (n *Notices) Push(text string) {
	if text == "" {
		return
	}
	n.queue = append(n.queue, Notice{Text: text})
}

// PushError enqueues an error message.
func (n *Notices) PushError(text string) {
	if text == "" {
		return
	}
	n.queue = append(n.queue, Notice{Text: text, IsErr: true})
}

// Pop removes and returns the front message.
func (n *Notices) Pop() (Notice, bool) {
	if len(n.queue) == 0 {
		return Notice{}, false
	}
	head := n.queue[0]
	n.queue = n.queue[1:]
	return head, true
}

// Len reports how many messages are waiting.
func (n *Notices) Len() int {
	return len(n.queue)
}
