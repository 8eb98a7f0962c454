package semantic

// SymbolTable maps names to symbols, keeping declaration order.
type SymbolTable struct {
	order  []string
	byName map[string]Symbol
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]Symbol)}
}

// Insert adds sym unless its name is already present. It reports whether
// sym was added; the first declaration always wins.
func (t *SymbolTable) Insert(sym Symbol) bool {
	if _, ok := t.byName[sym.Name]; ok {
		return false
	}
	t.byName[sym.Name] = sym
	t.order = append(t.order, sym.Name)
	return true
}

// Get looks a name up.
func (t *SymbolTable) Get(name string) (Symbol, bool) {
	sym, ok := t.byName[name]
	return sym, ok
}

// Names returns the declared names in declaration order.
func (t *SymbolTable) Names() []string {
	return append([]string(nil), t.order...)
}

// Len returns the number of symbols.
func (t *SymbolTable) Len() int {
	return len(t.order)
}
