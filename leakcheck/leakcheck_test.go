package leakcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juntyr/wobbly/arc"
	"github.com/juntyr/wobbly/rc"
)

func TestTracker_ReportsLiveGroups(t *testing.T) {
	tr := Install()
	defer tr.Uninstall()

	r := rc.New(1)
	m := rc.NewWobbly(r)

	require.Error(t, tr.Check())
	assert.Len(t, tr.Live(), 1)

	m.Drop()
	r.Drop()

	require.NoError(t, tr.Check())
	assert.Empty(t, tr.Live())
}

func TestTracker_ReportNamesFoundingSite(t *testing.T) {
	tr := Install()
	defer tr.Uninstall()

	r := rc.New(1)
	m := rc.NewWobbly(r)
	defer func() {
		m.Drop()
		r.Drop()
	}()

	err := tr.Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 group(s) not reclaimed")
	assert.Contains(t, err.Error(), "rc")
	assert.Contains(t, err.Error(), "TestTracker_ReportNamesFoundingSite")
}

func TestTracker_LiveInFoundingOrder(t *testing.T) {
	tr := Install()
	defer tr.Uninstall()

	r := arc.New(1)
	a := arc.NewWobbly(r)
	b := arc.NewWobbly(r)
	c := arc.NewWobbly(r)

	ids := tr.Live()
	require.Len(t, ids, 3)
	assert.True(t, ids[0] < ids[1] && ids[1] < ids[2], "ids out of founding order: %v", ids)

	a.Drop()
	b.Drop()
	c.Drop()
	r.Drop()
	assert.Empty(t, tr.Live())
}

func TestTracker_VerifyNone(t *testing.T) {
	tr := Install()
	defer tr.Uninstall()

	r := arc.New("v")
	m := arc.NewWobbly(r)
	m2 := m.Clone()
	m2.Drop()
	m.Drop()
	r.Drop()

	tr.VerifyNone(t)
}

func TestTracker_UninstallStopsTracking(t *testing.T) {
	tr := Install()
	tr.Uninstall()

	r := rc.New(1)
	m := rc.NewWobbly(r)
	defer func() {
		m.Drop()
		r.Drop()
	}()

	require.NoError(t, tr.Check())
}
