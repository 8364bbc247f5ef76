package batch

import (
	"image"

	"github.com/corona10/goimagehash"
)

// DefaultDedupThreshold is the Hamming distance between two difference hashes
// under which images are treated as the same picture.
const DefaultDedupThreshold = 10

type seenImage struct {
	hash  *goimagehash.ImageHash
	index int
}

// dedupIndex remembers the perceptual hash of every classified image.
type dedupIndex struct {
	threshold int
	seen      []seenImage
}

func newDedupIndex(threshold int) *dedupIndex {
	if threshold <= 0 {
		threshold = DefaultDedupThreshold
	}
	return &dedupIndex{threshold: threshold}
}

// hash returns the difference hash of img, or nil when it cannot be hashed.
func (d *dedupIndex) hash(img image.Image) *goimagehash.ImageHash {
	if img == nil {
		return nil
	}
	h, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return nil
	}
	return h
}

// match returns the result index of an earlier image close to h.
func (d *dedupIndex) match(h *goimagehash.ImageHash) (int, bool) {
	if h == nil {
		return 0, false
	}
	for _, s := range d.seen {
		dist, err := h.Distance(s.hash)
		if err == nil && dist < d.threshold {
			return s.index, true
		}
	}
	return 0, false
}

func (d *dedupIndex) add(h *goimagehash.ImageHash, index int) {
	if h != nil {
		d.seen = append(d.seen, seenImage{hash: h, index: index})
	}
}
