package domain

import "strings"

// BlockKind classifies one line of a listing's full details.
type BlockKind string

const (
	BlockHeading    BlockKind = "heading"
	BlockSubheading BlockKind = "subheading"
	BlockBullet     BlockKind = "bullet"
	BlockParagraph  BlockKind = "paragraph"
)

// Block is a rendered unit of full details.
type Block struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text"`
}

// ParseDetails interprets the lightweight markup used in full details:
// "##" headings, "###" subheadings and "-" bullets. Blank lines are dropped.
// The text is stored as written; this is only a rendering aid.
func ParseDetails(full string) []Block {
	lines := strings.Split(strings.ReplaceAll(full, "\r\n", "\n"), "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		switch {
		case strings.HasPrefix(trimmed, "###"):
			blocks = append(blocks, Block{Kind: BlockSubheading, Text: strings.TrimSpace(trimmed[3:])})
		case strings.HasPrefix(trimmed, "##"):
			blocks = append(blocks, Block{Kind: BlockHeading, Text: strings.TrimSpace(trimmed[2:])})
		case strings.HasPrefix(trimmed, "-"):
			blocks = append(blocks, Block{Kind: BlockBullet, Text: strings.TrimSpace(trimmed[1:])})
		default:
			blocks = append(blocks, Block{Kind: BlockParagraph, Text: trimmed})
		}
	}
	return blocks
}
