package topicassist

import "strings"

// Batch accumulates the ids of recently sent messages for the topic being
// composed. It is not safe for concurrent use; the Controller serializes access.
type Batch struct {
	pending   []int64
	lastTopic string
	threshold int
	maxIds    int
}

func NewBatch(threshold, maxIds int) *Batch {
	return &Batch{threshold: threshold, maxIds: maxIds}
}

// Record appends ids sent under topic. A change of topic drops whatever was
// pending for the previous one and reports switched.
func (b *Batch) Record(topic string, ids []int64) (switched bool) {
	if b.lastTopic != "" && !strings.EqualFold(b.lastTopic, topic) {
		b.pending = b.pending[:0]
		switched = true
	}
	b.lastTopic = topic
	b.pending = append(b.pending, ids...)
	return switched
}

func (b *Batch) Ready() bool {
	return len(b.pending) >= b.threshold
}

func (b *Batch) Len() int {
	return len(b.pending)
}

// Take hands out the pending ids, keeping only the most recent maxIds, and
// empties the batch. Ids are never handed out twice.
func (b *Batch) Take() []int64 {
	ids := b.pending
	if len(ids) > b.maxIds {
		ids = ids[len(ids)-b.maxIds:]
	}
	out := make([]int64, len(ids))
	copy(out, ids)
	b.pending = b.pending[:0]
	return out
}

// Clear drops pending ids but keeps the last seen topic.
func (b *Batch) Clear() {
	b.pending = b.pending[:0]
}

// Anchor is the id a forward rename pivots on: the most recent id of a batch.
func Anchor(batch []int64) int64 {
	if len(batch) == 0 {
		return 0
	}
	return batch[len(batch)-1]
}
