package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagTrackerWasSet(t *testing.T) {
	ft := NewFlagTracker()
	assert.False(t, ft.WasSet("jobs"))
	ft.Set("jobs")
	assert.True(t, ft.WasSet("jobs"))
}

func TestFlagTrackerMergeFunctionsPreferOverrideWhenSet(t *testing.T) {
	ft := NewFlagTracker()
	ft.Set("jobs")
	assert.Equal(t, 8, ft.MergeInt(4, 8, "jobs"))
	assert.Equal(t, 4, ft.MergeInt(4, 8, "unset"))

	assert.Equal(t, "override", ft.MergeString("base", "override", "jobs"))
	assert.Equal(t, "base", ft.MergeString("base", "override", "unset"))

	assert.True(t, ft.MergeBool(false, true, "jobs"))
	assert.False(t, ft.MergeBool(false, true, "unset"))

	assert.Equal(t, 2.5, ft.MergeFloat64(1.0, 2.5, "jobs"))
	assert.Equal(t, 1.0, ft.MergeFloat64(1.0, 2.5, "unset"))
}

func TestFlagTrackerMergeStringSliceRequiresNonEmptyOverride(t *testing.T) {
	ft := NewFlagTracker()
	ft.Set("exclude")
	assert.Equal(t, []string{"a", "b"}, ft.MergeStringSlice([]string{"x"}, []string{"a", "b"}, "exclude"))
	assert.Equal(t, []string{"x"}, ft.MergeStringSlice([]string{"x"}, nil, "exclude"), "an empty override must not clobber the base even when the flag was set")
}

func TestFlagTrackerClearResetsState(t *testing.T) {
	ft := NewFlagTracker()
	ft.Set("jobs")
	ft.Clear()
	assert.False(t, ft.WasSet("jobs"))
	assert.Equal(t, 0, ft.Count())
}

func TestFlagTrackerGetAllReturnsIndependentCopy(t *testing.T) {
	ft := NewFlagTracker()
	ft.Set("jobs")
	snapshot := ft.GetAll()
	snapshot["jobs"] = false
	assert.True(t, ft.WasSet("jobs"), "mutating the returned copy must not affect internal state")
}

func TestNewFlagTrackerWithFlagsCopiesInput(t *testing.T) {
	src := map[string]bool{"jobs": true}
	ft := NewFlagTrackerWithFlags(src)
	src["jobs"] = false
	assert.True(t, ft.WasSet("jobs"), "the tracker must copy the input map, not alias it")
}
