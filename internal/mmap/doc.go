// Package mmap maps tile payloads read-only into memory.
//
// The b3dm and GLB decoders slice the mapped bytes instead of copying them
// through a read buffer, so a LocalStore blob costs one mapping and no heap.
//
//	p, err := mmap.Open("tiles/0/0.b3dm")
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//	header, err := p.Section(0, 28)
//
// Slices handed out by Bytes and Section are valid only until Close. Empty
// files are not mapped at all.
package mmap
