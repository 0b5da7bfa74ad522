// Copyright © 2024 Galvanized Logic Inc.

package media

import (
	"sync"

	"github.com/swarmkit/arena/entity"
	"github.com/swarmkit/arena/index"
	"github.com/swarmkit/arena/math/lin"
)

// RABMessage is the payload a range-and-bearing emitter broadcasts;
// opaque to the medium itself.
type RABMessage struct {
	Data []byte
}

// RAB is the range-and-bearing channel: every enabled emitter
// broadcasts a message, and every receiver within rangeLimit and with
// clear line of sight observes the emitter's range and bearing plus
// its message.
type RAB struct {
	mu        sync.Mutex
	emitters  map[entity.ID]*enabledPoint
	messages  map[entity.ID]RABMessage
	receivers map[entity.ID]*rabReceiver
	readings  map[entity.ID][]Reading
}

type rabReceiver struct {
	point      enabledPoint
	rangeLimit float64
}

// NewRAB constructs an empty range-and-bearing medium.
func NewRAB() *RAB {
	return &RAB{
		emitters:  map[entity.ID]*enabledPoint{},
		messages:  map[entity.ID]RABMessage{},
		receivers: map[entity.ID]*rabReceiver{},
		readings:  map[entity.ID][]Reading{},
	}
}

func (r *RAB) Name() string { return "range-and-bearing" }

func (r *RAB) RegisterEmitter(id entity.ID, pos lin.V3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emitters[id] = &enabledPoint{id: id, pos: pos, enabled: true}
}

// Broadcast sets the message id's emitter transmits this and every
// subsequent tick, until changed again.
func (r *RAB) Broadcast(id entity.ID, msg RABMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[id] = msg
}

func (r *RAB) RegisterReceiver(id entity.ID, pos lin.V3, rangeLimit float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receivers[id] = &rabReceiver{point: enabledPoint{id: id, pos: pos, enabled: true}, rangeLimit: rangeLimit}
}

func (r *RAB) Deregister(id entity.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.emitters, id)
	delete(r.messages, id)
	delete(r.receivers, id)
	delete(r.readings, id)
}

// SetEnabled toggles an emitter's or receiver's participation without
// removing its registration.
func (r *RAB) SetEnabled(id entity.ID, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.emitters[id]; ok {
		e.enabled = enabled
	}
	if rv, ok := r.receivers[id]; ok {
		rv.point.enabled = enabled
	}
}

// SetPosition updates one participant's current pose. Space does not
// call it; it refreshes every participant through SyncPositions before
// each Update.
func (r *RAB) SetPosition(id entity.ID, pos lin.V3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.emitters[id]; ok {
		e.pos = pos
	}
	if rv, ok := r.receivers[id]; ok {
		rv.point.pos = pos
	}
}

func (r *RAB) SyncPositions(pose func(id entity.ID) (lin.V3, bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.emitters {
		if p, ok := pose(id); ok {
			e.pos = p
		}
	}
	for id, rv := range r.receivers {
		if p, ok := pose(id); ok {
			rv.point.pos = p
		}
	}
}

func (r *RAB) Update(idx index.Index, occluder Occluder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.readings = map[entity.ID][]Reading{}
	for rid, recv := range r.receivers {
		if !recv.point.enabled {
			continue
		}
		var out []Reading
		idx.ForEntitiesInSphereRange(recv.point.pos, recv.rangeLimit, func(raw uint32) bool {
			eid := entity.ID(raw)
			if eid == rid {
				return true
			}
			em, ok := r.emitters[eid]
			if !ok || !em.enabled {
				return true
			}
			if occluder != nil && occluder.Occluded(recv.point.pos, em.pos, rid, eid) {
				return true
			}
			delta := *new(lin.V3).Sub(&em.pos, &recv.point.pos)
			dist := delta.Len()
			if dist > recv.rangeLimit {
				return true
			}
			bearing := delta
			if !lin.Aeq(dist, 0) {
				bearing.Scale(&bearing, 1/dist)
			}
			out = append(out, Reading{EmitterID: eid, Range: dist, Bearing: bearing, Payload: r.messages[eid]})
			return true
		})
		r.readings[rid] = out
	}
}

func (r *RAB) Readings(receiver entity.ID) []Reading {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readings[receiver]
}
