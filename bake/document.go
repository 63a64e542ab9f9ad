// Package bake sequences the encoders into one generated header document.
package bake

import (
	"fmt"
	"strconv"
	"strings"
)

const indent = "  "

// Block is one named data array of the generated document: a flat integer
// stream with its declared C element type and size constant.
type Block struct {
	Name string  `json:"name"`
	Type string  `json:"type"`
	Size int     `json:"size"`
	Rows [][]int `json:"rows"`
}

// formatRows renders data rows as C array-literal lines. Byte-sized blocks
// are zero padded to a multiple of 4 elements and 16-bit blocks to a
// multiple of 2, conditionally compiled on the targets whose loaders read
// past the data end; the rule is part of the binary layout contract.
func formatRows(rows [][]int, dataType string) string {
	var sb strings.Builder
	total := 0
	for i, row := range rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(indent)
		for j, v := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Itoa(v))
		}
		sb.WriteString(",")
		total += len(row)
	}

	remainder := 0
	switch dataType {
	case "uint8_t", "int8_t":
		remainder = 4 - (total % 4)
		if remainder == 4 {
			remainder = 0
		}
	case "uint16_t", "int16_t":
		remainder = total % 2
	case "uint32_t", "int32_t", "uint64_t", "int64_t", "float", "double":
		remainder = 0
	default:
		panic(fmt.Sprintf("unknown data type: %s", dataType))
	}

	if remainder != 0 {
		zeros := make([]string, remainder)
		for i := range zeros {
			zeros[i] = "0"
		}
		sb.WriteString("\n#if defined(__x86_64__) || defined(__i386__)\n")
		sb.WriteString(indent)
		sb.WriteString(strings.Join(zeros, ", "))
		sb.WriteString(",\n#endif")
	}

	return sb.String()
}

func rowsFromTriples(data [][3]int16) [][]int {
	rows := make([][]int, len(data))
	for i, t := range data {
		rows[i] = []int{int(t[0]), int(t[1]), int(t[2])}
	}
	return rows
}
