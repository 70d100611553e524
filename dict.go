package main

// DictEntry is one append-only dictionary record (§4.4): a link to the
// previous entry, the word's interned name address, whether it is hidden or
// immediate, and its tagged payload (CODE for builtins/user words, REF for
// globals, LOCAL for locals).
type DictEntry struct {
	prev     *DictEntry
	nameAddr uint16
	name     string
	payload  Cell
	hidden   bool
}

// Immediate reports the dictionary's one-bit immediate flag, carried as
// meta=1 on the entry's payload rather than a separate field (§4.4).
func (e *DictEntry) Immediate() bool {
	_, meta, _ := e.payload.Untag()
	return meta == 1
}

// DictMark is a checkpoint returned by Dictionary.Mark, rewindable via
// Dictionary.Forget.
type DictMark struct {
	head *DictEntry
}

// Dictionary is Tacit's append-only, checkpoint-able symbol table. Entries
// are ordinary Go values (not packed into a memory segment) since nothing
// in the spec requires the dictionary itself to be addressable from
// bytecode; only its payload cells are.
type Dictionary struct {
	head *DictEntry
}

func NewDictionary() *Dictionary { return &Dictionary{} }

// Define prepends a new entry. name must already be interned by the caller;
// payload's meta bit (set via Tagged) carries the immediate flag.
func (d *Dictionary) Define(name string, nameAddr uint16, payload Cell) *DictEntry {
	e := &DictEntry{prev: d.head, nameAddr: nameAddr, name: name, payload: payload}
	d.head = e
	return e
}

// Lookup scans from the head, skipping hidden entries, and returns the
// matching entry or nil.
func (d *Dictionary) Lookup(name string) *DictEntry {
	for e := d.head; e != nil; e = e.prev {
		if !e.hidden && e.name == name {
			return e
		}
	}
	return nil
}

// Mark captures the current head as a checkpoint.
func (d *Dictionary) Mark() DictMark { return DictMark{head: d.head} }

// Forget rewinds the dictionary to a prior checkpoint, discarding every
// entry defined since.
func (d *Dictionary) Forget(m DictMark) { d.head = m.head }

// HideHead/UnhideHead toggle visibility of the most recently defined entry,
// used so a word's body cannot call itself by name except via `recurse`,
// and so it becomes findable again afterwards.
func (d *Dictionary) HideHead() {
	if d.head != nil {
		d.head.hidden = true
	}
}

func (d *Dictionary) UnhideHead() {
	if d.head != nil {
		d.head.hidden = false
	}
}

// Head returns the most recently defined entry, or nil.
func (d *Dictionary) Head() *DictEntry { return d.head }

// EntryInfo reports a snapshot of an entry's visible state (§4.4
// `entry_info`).
type EntryInfo struct {
	Name      string
	Payload   Cell
	Hidden    bool
	Immediate bool
}

func (e *DictEntry) Info() EntryInfo {
	return EntryInfo{Name: e.name, Payload: e.payload, Hidden: e.hidden, Immediate: e.Immediate()}
}
