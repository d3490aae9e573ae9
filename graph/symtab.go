package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// SymbolTable maps word ids to strings for debug rendering.
// Text format: one "symbol id" pair per line, # starts a comment.
type SymbolTable struct {
	byID map[int32]string
}

// LoadSymbolTable reads a text symbol table.
func LoadSymbolTable(r io.Reader) (*SymbolTable, error) {
	st := &SymbolTable{byID: make(map[int32]string)}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("symbol table line %d: want \"symbol id\", got %q", lineNo, line)
		}
		id, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("symbol table line %d: bad id %q: %w", lineNo, fields[1], err)
		}
		st.byID[int32(id)] = fields[0]
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return st, nil
}

// LoadSymbolTableFile reads a text symbol table from a file path.
func LoadSymbolTableFile(path string) (*SymbolTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open symbol table: %w", err)
	}
	defer f.Close()
	st, err := LoadSymbolTable(f)
	if err != nil {
		return nil, fmt.Errorf("load symbol table %s: %w", path, err)
	}
	return st, nil
}

// Find returns the symbol for id, or a bracketed placeholder when unknown.
func (st *SymbolTable) Find(id int32) string {
	if s, ok := st.byID[id]; ok {
		return s
	}
	return fmt.Sprintf("<unk#%d>", id)
}

// Render joins the symbols for a word-id sequence with spaces.
func (st *SymbolTable) Render(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = st.Find(int32(id))
	}
	return strings.Join(parts, " ")
}
