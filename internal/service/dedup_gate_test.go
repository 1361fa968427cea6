package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/cellbroadcast-api/internal/models"
)

func cellRecord(serial, cid int) models.BroadcastRecord {
	return models.BroadcastRecord{
		GeographicalScope: models.GeoScopeCellWide,
		SerialNumber:      serial,
		Location:          models.Location{PLMN: "310260", LAC: 10, CID: cid},
	}
}

func TestDedupGateRejectsSameKey(t *testing.T) {
	g := NewDedupGate(0)
	assert.True(t, g.Admit(cellRecord(7, 100)))
	assert.False(t, g.Admit(cellRecord(7, 100)))
	assert.True(t, g.Admit(cellRecord(7, 101)))
	assert.True(t, g.Admit(cellRecord(8, 100)))
	assert.Equal(t, 3, g.Len())
}

func TestDedupGateScopeSeparatesKeys(t *testing.T) {
	g := NewDedupGate(16)

	plmn := models.BroadcastRecord{
		GeographicalScope: models.GeoScopePLMNWide,
		SerialNumber:      7,
		Location:          models.Location{PLMN: "310260", LAC: models.LocationUnknown, CID: models.LocationUnknown},
	}
	assert.True(t, g.Admit(plmn))

	// the same PLMN-wide alert heard in another cell is still a duplicate
	moved := plmn
	moved.Location.LAC, moved.Location.CID = 55, 66
	assert.False(t, g.Admit(moved))

	// a cell-wide broadcast sharing the serial is a different alert
	assert.True(t, g.Admit(cellRecord(7, models.LocationUnknown)))

	la := models.BroadcastRecord{GeographicalScope: models.GeoScopeLAWide, SerialNumber: 7, Location: models.Location{PLMN: "310260", LAC: 10, CID: 1}}
	assert.True(t, g.Admit(la))
	la.Location.CID = 2
	assert.False(t, g.Admit(la))

	otherNetwork := plmn
	otherNetwork.Location.PLMN = "310410"
	assert.True(t, g.Admit(otherNetwork))
}

func TestDedupGateForgetsOldestWhenFull(t *testing.T) {
	g := NewDedupGate(2)
	assert.True(t, g.Admit(cellRecord(1, 1)))
	assert.True(t, g.Admit(cellRecord(2, 1)))
	assert.True(t, g.Admit(cellRecord(3, 1)))
	assert.Equal(t, 2, g.Len())

	assert.True(t, g.Admit(cellRecord(1, 1)))
	assert.False(t, g.Admit(cellRecord(3, 1)))

	g.Reset()
	assert.Zero(t, g.Len())
	assert.True(t, g.Admit(cellRecord(3, 1)))
}

func TestDedupGateConcurrentAdmit(t *testing.T) {
	g := NewDedupGate(128)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.Admit(cellRecord(42, 42)) {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, admitted)
}
