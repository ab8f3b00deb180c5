package notion

import "strings"

// FlattenBlocks renders an ordered block list to plain text. Pure and
// deterministic: the same block sequence always yields byte-identical output.
//
// Nested children are not expanded here (that needs one API call per parent
// block); a marker line stands in for them.
func FlattenBlocks(blocks []Block) string {
	var sb strings.Builder

	for _, b := range blocks {
		switch b.Type {
		case TypeParagraph, TypeHeading1, TypeHeading2, TypeHeading3, TypeQuote, TypeCallout:
			if b.RichText != nil {
				sb.WriteString(plainText(b.RichText))
				sb.WriteString("\n\n")
			}

		case TypeBulletedItem, TypeNumberedItem:
			if b.RichText != nil {
				sb.WriteString("• ")
				sb.WriteString(plainText(b.RichText))
				sb.WriteString("\n")
			}

		case TypeToDo:
			if b.RichText != nil {
				if b.Checked {
					sb.WriteString("☑ ")
				} else {
					sb.WriteString("☐ ")
				}
				sb.WriteString(plainText(b.RichText))
				sb.WriteString("\n")
			}

		case TypeToggle:
			if b.RichText != nil {
				sb.WriteString("▸ ")
				sb.WriteString(plainText(b.RichText))
				sb.WriteString("\n")
			}

		case TypeCode:
			if b.RichText != nil {
				sb.WriteString("```")
				sb.WriteString(b.Language)
				sb.WriteString("\n")
				sb.WriteString(plainText(b.RichText))
				sb.WriteString("\n```\n\n")
			}

		case TypeDivider:
			sb.WriteString("---\n\n")

		case TypeTable:
			sb.WriteString("[table]\n\n")

		default:
			// Unrecognized block types contribute no text.
		}

		if b.HasChildren {
			sb.WriteString("[nested content]\n")
		}
	}

	return strings.TrimRight(sb.String(), " \t\n")
}
