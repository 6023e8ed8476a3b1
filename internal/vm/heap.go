package vm

// Heap is the VM's append-only store for strings and bundles (§4.5): a
// dense vector of interned-by-allocation strings, and a flat vector of
// values paired with a parallel stride vector recording how many
// contiguous slots starting at a given index belong to one array. Nothing
// is ever freed during a run, trading memory for the simplicity of never
// needing a collector.
type Heap struct {
	strings []string
	values  []Value
	strides []int
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// AllocString appends s and returns its dense index.
func (h *Heap) AllocString(s string) int {
	h.strings = append(h.strings, s)
	return len(h.strings) - 1
}

// String returns the string previously allocated at i.
func (h *Heap) String(i int) string {
	return h.strings[i]
}

// AllocArray pushes elems contiguously, recording their count as the
// stride at the head slot and 1 at every subsequent slot, and returns the
// head's dense index. A zero-length array still occupies one slot (a nil
// placeholder) with stride 0, so every bundle has a valid head index to
// reference even when empty.
func (h *Heap) AllocArray(elems []Value) int {
	head := len(h.values)
	if len(elems) == 0 {
		h.values = append(h.values, NilValue())
		h.strides = append(h.strides, 0)
		return head
	}
	for i, v := range elems {
		h.values = append(h.values, v)
		if i == 0 {
			h.strides = append(h.strides, len(elems))
		} else {
			h.strides = append(h.strides, 1)
		}
	}
	return head
}

// DerefArray returns the slice of values belonging to the array headed at
// i, per the stride recorded there.
func (h *Heap) DerefArray(i int) []Value {
	n := h.strides[i]
	return h.values[i : i+n]
}

// Deref returns the value at offset off within the array headed at i.
func (h *Heap) Deref(i, off int) Value {
	return h.values[i+off]
}
