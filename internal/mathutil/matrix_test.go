package mathutil

import (
	"math"
	"testing"
)

func TestNewMat(t *testing.T) {
	m := NewMat(3, 4)
	if len(m) != 3 {
		t.Fatalf("rows = %d, want 3", len(m))
	}
	for i, row := range m {
		if len(row) != 4 {
			t.Fatalf("row %d cols = %d, want 4", i, len(row))
		}
	}
}

func TestCloneMat(t *testing.T) {
	m := NewMat(2, 2)
	m[0][0] = 1
	m[1][1] = 2
	c := CloneMat(m)
	c[0][0] = 99
	if m[0][0] != 1 {
		t.Errorf("CloneMat shares backing storage: m[0][0] = %f", m[0][0])
	}
	if c[1][1] != 2 {
		t.Errorf("c[1][1] = %f, want 2", c[1][1])
	}
}

func TestDotVec(t *testing.T) {
	a := Vec{1, 2, 3}
	b := Vec{4, 5, 6}
	got := DotVec(a, b)
	want := 32.0
	if math.Abs(got-want) > 1e-10 {
		t.Errorf("DotVec = %f, want %f", got, want)
	}
}

func TestAddSubVec(t *testing.T) {
	a := Vec{1, 2, 3}
	b := Vec{4, 5, 6}
	dst := NewVec(3)
	AddVec(dst, a, b)
	want := Vec{5, 7, 9}
	for i := range dst {
		if dst[i] != want[i] {
			t.Errorf("AddVec dst[%d] = %f, want %f", i, dst[i], want[i])
		}
	}
	SubVec(dst, b, a)
	want = Vec{3, 3, 3}
	for i := range dst {
		if dst[i] != want[i] {
			t.Errorf("SubVec dst[%d] = %f, want %f", i, dst[i], want[i])
		}
	}
}

func TestMatVec(t *testing.T) {
	m := Mat{{1, 0}, {0, 2}, {1, 1}}
	v := Vec{3, 4}
	dst := NewVec(3)
	MatVec(dst, m, v)
	want := Vec{3, 8, 7}
	for i := range dst {
		if math.Abs(dst[i]-want[i]) > 1e-12 {
			t.Errorf("dst[%d] = %f, want %f", i, dst[i], want[i])
		}
	}
}

func TestMahalanobis(t *testing.T) {
	x := Vec{1, 2}
	mean := Vec{0, 0}
	invVar := Vec{1, 0.5}
	got := Mahalanobis(x, mean, invVar)
	want := 1.0 + 4.0*0.5
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Mahalanobis = %f, want %f", got, want)
	}
}
