// Package lexblock implements the block-compressed posting layout: a
// fixed-cardinality group of postings per block, varbyte gap-encoded
// docIDs followed by a dense f32 TFS array, plus the on-disk lexicon
// format carrying per-block skip metadata.
package lexblock

import (
	"encoding/binary"
	"math"

	"github.com/syedafeezu/mizugram/internal/codec"
	"github.com/syedafeezu/mizugram/internal/model"
)

// EncodedBlock is one block's on-disk bytes plus the lexicon metadata
// describing it.
type EncodedBlock struct {
	Bytes                []byte
	MaxDocID             uint32
	CompressedDocIDLen   uint32
	DocCount             uint32
}

// EncodeBlocks splits postings (already sorted strictly ascending by
// docID, deduplicated) into blocks of up to model.BlockSize and encodes
// each one as [varbyte docID gaps][dense f32 TFS array].
func EncodeBlocks(postings []model.Posting) []EncodedBlock {
	var blocks []EncodedBlock
	for start := 0; start < len(postings); start += model.BlockSize {
		end := start + model.BlockSize
		if end > len(postings) {
			end = len(postings)
		}
		chunk := postings[start:end]

		docIDs := make([]uint32, len(chunk))
		for i, p := range chunk {
			docIDs[i] = p.DocID
		}
		idBytes := codec.EncodeGaps(docIDs)

		tfsBytes := make([]byte, 4*len(chunk))
		for i, p := range chunk {
			binary.LittleEndian.PutUint32(tfsBytes[i*4:], math.Float32bits(p.TFS))
		}

		buf := make([]byte, 0, len(idBytes)+len(tfsBytes))
		buf = append(buf, idBytes...)
		buf = append(buf, tfsBytes...)

		blocks = append(blocks, EncodedBlock{
			Bytes:              buf,
			MaxDocID:           chunk[len(chunk)-1].DocID,
			CompressedDocIDLen: uint32(len(idBytes)),
			DocCount:           uint32(len(chunk)),
		})
	}
	return blocks
}

// DecodeBlock decodes one block's raw bytes back into postings, given
// the docCount and compressed-docID-length recorded in the lexicon.
func DecodeBlock(raw []byte, docCount, compressedDocIDLen uint32) ([]model.Posting, error) {
	idBytes := raw[:compressedDocIDLen]
	tfsBytes := raw[compressedDocIDLen:]

	docIDs, err := codec.DecodeGaps(idBytes, int(docCount))
	if err != nil {
		return nil, err
	}
	out := make([]model.Posting, docCount)
	for i := uint32(0); i < docCount; i++ {
		tfs := math.Float32frombits(binary.LittleEndian.Uint32(tfsBytes[i*4:]))
		out[i] = model.Posting{DocID: docIDs[i], TFS: tfs}
	}
	return out, nil
}
