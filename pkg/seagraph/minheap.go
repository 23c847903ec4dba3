package seagraph

import "errors"

type pqItem interface {
	int32
}

type pqNode[T pqItem] struct {
	rank float64
	item T
}

// minHeap is a binary-heap priority queue with positional tracking so
// decreaseKey stays O(log n).
type minHeap[T pqItem] struct {
	heap []pqNode[T]
	pos  map[T]int
}

func newMinHeap[T pqItem]() *minHeap[T] {
	return &minHeap[T]{
		heap: make([]pqNode[T], 0),
		pos:  make(map[T]int),
	}
}

func (h *minHeap[T]) parent(index int) int     { return (index - 1) / 2 }
func (h *minHeap[T]) leftChild(index int) int  { return 2*index + 1 }
func (h *minHeap[T]) rightChild(index int) int { return 2*index + 2 }

func (h *minHeap[T]) heapifyUp(index int) {
	for index != 0 && h.heap[index].rank < h.heap[h.parent(index)].rank {
		h.heap[index], h.heap[h.parent(index)] = h.heap[h.parent(index)], h.heap[index]

		h.pos[h.heap[index].item] = index
		h.pos[h.heap[h.parent(index)].item] = h.parent(index)
		index = h.parent(index)
	}
}

func (h *minHeap[T]) heapifyDown(index int) {
	smallest := index
	left := h.leftChild(index)
	right := h.rightChild(index)

	if left < len(h.heap) && h.heap[left].rank < h.heap[smallest].rank {
		smallest = left
	}
	if right < len(h.heap) && h.heap[right].rank < h.heap[smallest].rank {
		smallest = right
	}
	if smallest != index {
		h.heap[index], h.heap[smallest] = h.heap[smallest], h.heap[index]
		h.pos[h.heap[index].item] = index
		h.pos[h.heap[smallest].item] = smallest

		h.heapifyDown(smallest)
	}
}

func (h *minHeap[T]) size() int {
	return len(h.heap)
}

func (h *minHeap[T]) getMin() (pqNode[T], error) {
	if len(h.heap) == 0 {
		return pqNode[T]{}, errors.New("heap is empty")
	}
	return h.heap[0], nil
}

func (h *minHeap[T]) insert(key pqNode[T]) {
	h.heap = append(h.heap, key)
	index := h.size() - 1
	h.pos[key.item] = index
	h.heapifyUp(index)
}

func (h *minHeap[T]) extractMin() (pqNode[T], error) {
	if len(h.heap) == 0 {
		return pqNode[T]{}, errors.New("heap is empty")
	}
	root := h.heap[0]
	h.heap[0] = h.heap[h.size()-1]
	h.heap = h.heap[:h.size()-1]
	h.pos[root.item] = -1
	h.heapifyDown(0)
	return root, nil
}

func (h *minHeap[T]) decreaseKey(key pqNode[T]) error {
	if h.pos[key.item] < 0 || h.pos[key.item] >= h.size() || key.rank > h.heap[h.pos[key.item]].rank {
		return errors.New("invalid index or new value")
	}
	h.heap[h.pos[key.item]] = key
	h.heapifyUp(h.pos[key.item])
	return nil
}
