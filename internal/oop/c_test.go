package oop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cShapes = `#include <stdio.h>
#include "shape.h"

struct file_ops {
    int (*open)(const char *path);
    int (*close)(int fd);
};

typedef struct {
    int x;
    int y;
} Point;

struct circle {
    Point center;
    int _radius;
    void (*draw)(struct circle *c);
};

Point *point_create(int x, int y);
void point_destroy(Point *p);

struct circle *circle_new(void) {
    for (int i = 0; i < 3; i++) {
        for (int j = 0; j < 3; j++) {
        }
    }
    qsort(NULL, 0, 0, NULL);
    return 0;
}
`

func TestCAnalyzer_Structs(t *testing.T) {
	t.Parallel()

	report := newCAnalyzer().Analyze("src/shapes.c", []byte(cShapes))

	assert.True(t, report.SyntaxOK)
	assert.Equal(t, "C", report.Language)
	assert.Equal(t, []string{"stdio.h", "shape.h"}, report.Imports)
	require.Len(t, report.Classes, 3)

	ops := findClass(t, report, "file_ops")
	assert.Equal(t, []string{"open", "close"}, ops.Methods)
	require.NotNil(t, ops.IsVtable)
	assert.True(t, *ops.IsVtable)

	point := findClass(t, report, "Point")
	assert.Equal(t, []string{"x", "y"}, point.PublicAttrs)
	assert.True(t, point.HasConstructor)
	assert.Equal(t, []string{"point_create", "point_destroy"}, point.SpecialMethods)
	require.NotNil(t, point.IsVtable)
	assert.False(t, *point.IsVtable)

	circle := findClass(t, report, "circle")
	assert.Equal(t, []string{"Point"}, circle.Bases)
	assert.Equal(t, []string{"draw"}, circle.Methods)
	assert.Equal(t, []string{"_radius"}, circle.PrivateAttrs)
	assert.True(t, circle.HasConstructor)
	require.NotNil(t, circle.IsVtable)
	assert.False(t, *circle.IsVtable)
}

func TestCAnalyzer_ComplexityAndHelpers(t *testing.T) {
	t.Parallel()

	report := newCAnalyzer().Analyze("shapes.c", []byte(cShapes))

	assert.Equal(t, 1, report.Complexity.TotalFunctions)
	assert.Equal(t, 1, report.Complexity.FunctionsWithNestedLoops)
	assert.Equal(t, 2, report.Complexity.MaxLoopDepth)
	assert.True(t, report.DataStructures.UsesSorted)
}

func TestCAnalyzer_VtableNeedsTwoFunctionPointers(t *testing.T) {
	t.Parallel()

	src := `struct net_ops {
    int (*send)(int);
    int flags;
};
`
	report := newCAnalyzer().Analyze("net.h", []byte(src))

	require.Len(t, report.Classes, 1)
	require.NotNil(t, report.Classes[0].IsVtable)
	assert.False(t, *report.Classes[0].IsVtable)
}

func TestCAnalyzer_SyntaxErrorStillAnalyzed(t *testing.T) {
	t.Parallel()

	src := "struct point { int x; int y; };\nint main( { for (;;) {\n"
	report := newCAnalyzer().Analyze("broken.c", []byte(src))

	assert.False(t, report.SyntaxOK)
	require.NotEmpty(t, report.Classes)
	assert.Equal(t, "point", report.Classes[0].Name)
}

func TestCAnalyzer_EmbeddedBaseFromOtherFile(t *testing.T) {
	t.Parallel()

	src := `typedef struct Derived {
    Base b;
    int y;
} Derived;
`
	report := newCAnalyzer().Analyze("derived.c", []byte(src))

	assert.True(t, report.SyntaxOK)
	require.Len(t, report.Classes, 1)
	assert.Equal(t, "Derived", report.Classes[0].Name)
	assert.Equal(t, []string{"Base"}, report.Classes[0].Bases)
}

func TestMatchesLifecycle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		fn, structName string
		want           bool
	}{
		{"list_create", "list", true},
		{"create_list", "list", true},
		{"List_Node_new", "list_node_t", true},
		{"listnode_init", "ListNode", true},
		{"list_create", "tree", false},
		{"listcreate", "list", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchesLifecycle(tt.fn, tt.structName, cConstructorVerbs), "%s vs %s", tt.fn, tt.structName)
	}
}

func TestIsVtableName(t *testing.T) {
	t.Parallel()

	assert.True(t, isVtableName("file_ops"))
	assert.True(t, isVtableName("device_operations"))
	assert.True(t, isVtableName("FileOps"))
	assert.True(t, isVtableName("shape_vtbl"))
	assert.False(t, isVtableName("point"))
	assert.False(t, isVtableName("Ops"))
}
