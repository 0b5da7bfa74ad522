// Copyright © 2024 Galvanized Logic Inc.

package media

import (
	"sync"

	"github.com/swarmkit/arena/entity"
	"github.com/swarmkit/arena/index"
	"github.com/swarmkit/arena/math/lin"
)

// Colour is an RGB LED colour in [0,1] per channel.
type Colour struct{ R, G, B float64 }

// LED is the LED channel: every enabled emitter shows a colour, and
// every receiver within rangeLimit and with clear line of sight
// observes the emitter's range, bearing, and current colour. Shares
// the registration and occlusion shape of RAB (spec.md groups both
// under "Media (6%)" with the same per-tick contract) but carries a
// colour payload instead of an arbitrary message.
type LED struct {
	mu        sync.Mutex
	emitters  map[entity.ID]*ledEmitter
	receivers map[entity.ID]*rabReceiver
	readings  map[entity.ID][]Reading
}

type ledEmitter struct {
	point  enabledPoint
	colour Colour
}

// NewLED constructs an empty LED medium.
func NewLED() *LED {
	return &LED{
		emitters:  map[entity.ID]*ledEmitter{},
		receivers: map[entity.ID]*rabReceiver{},
		readings:  map[entity.ID][]Reading{},
	}
}

func (l *LED) Name() string { return "led" }

func (l *LED) RegisterEmitter(id entity.ID, pos lin.V3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.emitters[id] = &ledEmitter{point: enabledPoint{id: id, pos: pos, enabled: true}}
}

// SetColour changes id's displayed colour, visible starting next tick.
func (l *LED) SetColour(id entity.ID, c Colour) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.emitters[id]; ok {
		e.colour = c
	}
}

func (l *LED) RegisterReceiver(id entity.ID, pos lin.V3, rangeLimit float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.receivers[id] = &rabReceiver{point: enabledPoint{id: id, pos: pos, enabled: true}, rangeLimit: rangeLimit}
}

func (l *LED) Deregister(id entity.ID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.emitters, id)
	delete(l.receivers, id)
	delete(l.readings, id)
}

func (l *LED) SetEnabled(id entity.ID, enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.emitters[id]; ok {
		e.point.enabled = enabled
	}
	if r, ok := l.receivers[id]; ok {
		r.point.enabled = enabled
	}
}

func (l *LED) SetPosition(id entity.ID, pos lin.V3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.emitters[id]; ok {
		e.point.pos = pos
	}
	if r, ok := l.receivers[id]; ok {
		r.point.pos = pos
	}
}

func (l *LED) SyncPositions(pose func(id entity.ID) (lin.V3, bool)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, e := range l.emitters {
		if p, ok := pose(id); ok {
			e.point.pos = p
		}
	}
	for id, r := range l.receivers {
		if p, ok := pose(id); ok {
			r.point.pos = p
		}
	}
}

func (l *LED) Update(idx index.Index, occluder Occluder) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.readings = map[entity.ID][]Reading{}
	for rid, recv := range l.receivers {
		if !recv.point.enabled {
			continue
		}
		var out []Reading
		idx.ForEntitiesInSphereRange(recv.point.pos, recv.rangeLimit, func(raw uint32) bool {
			eid := entity.ID(raw)
			if eid == rid {
				return true
			}
			em, ok := l.emitters[eid]
			if !ok || !em.point.enabled {
				return true
			}
			if occluder != nil && occluder.Occluded(recv.point.pos, em.point.pos, rid, eid) {
				return true
			}
			delta := *new(lin.V3).Sub(&em.point.pos, &recv.point.pos)
			dist := delta.Len()
			if dist > recv.rangeLimit {
				return true
			}
			bearing := delta
			if !lin.Aeq(dist, 0) {
				bearing.Scale(&bearing, 1/dist)
			}
			out = append(out, Reading{EmitterID: eid, Range: dist, Bearing: bearing, Payload: em.colour})
			return true
		})
		l.readings[rid] = out
	}
}

func (l *LED) Readings(receiver entity.ID) []Reading {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readings[receiver]
}
