package oop

// ClassReport is the language-independent description of one class-like type.
type ClassReport struct {
	Name           string   `json:"name"`
	Module         string   `json:"module,omitempty"`
	FilePath       string   `json:"file_path"`
	Bases          []string `json:"bases"`
	Methods        []string `json:"methods"`
	HasConstructor bool     `json:"has_constructor"`
	SpecialMethods []string `json:"special_methods"`
	PrivateAttrs   []string `json:"private_attrs"`
	PublicAttrs    []string `json:"public_attrs"`
	// IsVtable is only set for C structs.
	IsVtable *bool `json:"is_vtable,omitempty"`
}

// DataStructures counts container literals and algorithmic helpers.
type DataStructures struct {
	ListCount       int  `json:"list_count"`
	DictCount       int  `json:"dict_count"`
	SetCount        int  `json:"set_count"`
	TupleCount      int  `json:"tuple_count"`
	ListComp        int  `json:"list_comp"`
	DictComp        int  `json:"dict_comp"`
	SetComp         int  `json:"set_comp"`
	UsesDefaultdict bool `json:"uses_defaultdict"`
	UsesCounter     bool `json:"uses_counter"`
	UsesHeapq       bool `json:"uses_heapq"`
	UsesBisect      bool `json:"uses_bisect"`
	UsesSorted      bool `json:"uses_sorted"`
}

// Add folds other into d.
func (d *DataStructures) Add(other DataStructures) {
	d.ListCount += other.ListCount
	d.DictCount += other.DictCount
	d.SetCount += other.SetCount
	d.TupleCount += other.TupleCount
	d.ListComp += other.ListComp
	d.DictComp += other.DictComp
	d.SetComp += other.SetComp
	d.UsesDefaultdict = d.UsesDefaultdict || other.UsesDefaultdict
	d.UsesCounter = d.UsesCounter || other.UsesCounter
	d.UsesHeapq = d.UsesHeapq || other.UsesHeapq
	d.UsesBisect = d.UsesBisect || other.UsesBisect
	d.UsesSorted = d.UsesSorted || other.UsesSorted
}

// Complexity summarizes loop nesting across functions.
type Complexity struct {
	TotalFunctions           int `json:"total_functions"`
	FunctionsWithNestedLoops int `json:"functions_with_nested_loops"`
	MaxLoopDepth             int `json:"max_loop_depth"`
}

// Add folds other into c.
func (c *Complexity) Add(other Complexity) {
	c.TotalFunctions += other.TotalFunctions
	c.FunctionsWithNestedLoops += other.FunctionsWithNestedLoops
	if other.MaxLoopDepth > c.MaxLoopDepth {
		c.MaxLoopDepth = other.MaxLoopDepth
	}
}

// recordFunction accounts for one function whose deepest loop nesting is depth.
func (c *Complexity) recordFunction(depth int) {
	c.TotalFunctions++
	if depth >= 2 {
		c.FunctionsWithNestedLoops++
	}
	if depth > c.MaxLoopDepth {
		c.MaxLoopDepth = depth
	}
}

// FileReport is the output of analyzing one source file.
type FileReport struct {
	FilePath       string         `json:"file_path"`
	Module         string         `json:"module,omitempty"`
	Language       string         `json:"language"`
	Classes        []ClassReport  `json:"classes"`
	Imports        []string       `json:"imports"`
	DataStructures DataStructures `json:"data_structures"`
	Complexity     Complexity     `json:"complexity"`
	SyntaxOK       bool           `json:"syntax_ok"`
}

func newFileReport(filePath, language string) *FileReport {
	return &FileReport{
		FilePath: filePath,
		Language: language,
		Classes:  []ClassReport{},
		Imports:  []string{},
		SyntaxOK: true,
	}
}

// withPath returns a deep copy of r relocated to filePath.
func (r *FileReport) withPath(filePath string) *FileReport {
	cp := *r
	cp.FilePath = filePath
	cp.Imports = append([]string{}, r.Imports...)
	cp.Classes = make([]ClassReport, len(r.Classes))
	for i, c := range r.Classes {
		c.FilePath = filePath
		c.Bases = append([]string{}, c.Bases...)
		c.Methods = append([]string{}, c.Methods...)
		c.SpecialMethods = append([]string{}, c.SpecialMethods...)
		c.PrivateAttrs = append([]string{}, c.PrivateAttrs...)
		c.PublicAttrs = append([]string{}, c.PublicAttrs...)
		if c.IsVtable != nil {
			v := *c.IsVtable
			c.IsVtable = &v
		}
		cp.Classes[i] = c
	}
	return &cp
}

// classBuilder accumulates a ClassReport with set semantics for names.
type classBuilder struct {
	report  ClassReport
	seen    map[string]bool
	private map[string]bool
	public  map[string]bool
}

func newClassBuilder(name, module, filePath string) *classBuilder {
	return &classBuilder{
		report: ClassReport{
			Name:           name,
			Module:         module,
			FilePath:       filePath,
			Bases:          []string{},
			Methods:        []string{},
			SpecialMethods: []string{},
			PrivateAttrs:   []string{},
			PublicAttrs:    []string{},
		},
		seen:    make(map[string]bool),
		private: make(map[string]bool),
		public:  make(map[string]bool),
	}
}

func (b *classBuilder) addBase(name string) {
	if name == "" || b.seen["base:"+name] {
		return
	}
	b.seen["base:"+name] = true
	b.report.Bases = append(b.report.Bases, name)
}

func (b *classBuilder) addMethod(name string) {
	if name == "" || b.seen["method:"+name] {
		return
	}
	b.seen["method:"+name] = true
	b.report.Methods = append(b.report.Methods, name)
}

func (b *classBuilder) addSpecial(name string) {
	if name == "" || b.seen["special:"+name] {
		return
	}
	b.seen["special:"+name] = true
	b.report.SpecialMethods = append(b.report.SpecialMethods, name)
}

// addAttr records an attribute. Private wins: a name seen as private is never
// also listed as public.
func (b *classBuilder) addAttr(name string, private bool) {
	if name == "" {
		return
	}
	if private {
		if b.private[name] {
			return
		}
		b.private[name] = true
		b.report.PrivateAttrs = append(b.report.PrivateAttrs, name)
		if b.public[name] {
			delete(b.public, name)
			b.report.PublicAttrs = removeString(b.report.PublicAttrs, name)
		}
		return
	}
	if b.private[name] || b.public[name] {
		return
	}
	b.public[name] = true
	b.report.PublicAttrs = append(b.report.PublicAttrs, name)
}

func (b *classBuilder) build() ClassReport {
	return b.report
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
