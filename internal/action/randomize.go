// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package action

import (
	"slices"

	"github.com/holomush/wardrobe/internal/asset"
	"github.com/holomush/wardrobe/internal/item"
	"github.com/holomush/wardrobe/internal/manipulator"
	"github.com/holomush/wardrobe/internal/validation"
)

// randomize regenerates the bodyparts of the player and, in full mode,
// replaces the worn clothes. Candidates are tried one at a time in random
// order; each trial list must be a valid prefix before it is kept, so the
// cost grows with bodyparts times candidates.
func (p *processor) randomize(a Randomize) {
	if a.Mode != RandomizeBody && a.Mode != RandomizeFull {
		p.invalid("unknown randomize mode")
		return
	}
	if !p.m.State().Room().Settings().AllowRandomize {
		p.fail(Restricted{Restriction: RoomSetting{Setting: "allowRandomize"}})
	}
	target := manipulator.CharacterTarget(p.ctx.Player)
	ch := p.m.Character(p.ctx.Player)
	p.check(Interaction{Kind: InteractSelf, Target: target})

	var kept []*item.Item
	for _, it := range ch.Items() {
		replace := it.IsBodypart() || (a.Mode == RandomizeFull && it.Type() == asset.TypePersonal)
		if !replace {
			kept = append(kept, it)
			continue
		}
		p.check(Interaction{Kind: InteractAddRemove, Target: target, Item: it})
	}
	if p.failed() {
		return
	}

	manager := p.m.State().Manager()
	vctx := ch.ValidationContext()
	items := p.randomBodyparts(manager, vctx)
	items = append(items, kept...)
	if a.Mode == RandomizeFull {
		items = p.randomClothes(manager, vctx, items)
	}

	root := p.root(target)
	if root == nil {
		return
	}
	root.ResetItemsTo(items)
	root.FixBodypartOrder()
	p.message(Message{ID: MessageRandomize, Target: p.ctx.Player})
}

// randomBodyparts picks one randomizable asset per bodypart, favoring assets
// that provide more attributes of the body wish list. Optional bodyparts are
// only picked when a candidate provides an attribute of the wish list.
func (p *processor) randomBodyparts(manager asset.Manager, vctx validation.Context) []*item.Item {
	wish := manager.Randomization().Body
	var result []*item.Item
	for _, bp := range manager.Bodyparts() {
		candidates := randomizable(manager, func(a *asset.Asset) bool { return a.Bodypart == bp.Name })
		if !bp.Required && !slices.ContainsFunc(candidates, func(a *asset.Asset) bool { return providesAny(a, wish) }) {
			continue
		}
		if next, ok := p.tryCandidates(vctx, result, p.ctx.weightedOrder(candidates, wish)); ok {
			result = next
			continue
		}
		if bp.Required {
			p.ctx.logger().Warn("no valid candidate for required bodypart", "bodypart", bp.Name)
		}
	}
	return result
}

// randomClothes fills every clothes wish list attribute the items do not
// provide yet.
func (p *processor) randomClothes(manager asset.Manager, vctx validation.Context, items []*item.Item) []*item.Item {
	for _, attr := range manager.Randomization().Clothes {
		if props, ok := validation.ResolveProperties(manager, items); ok && props.HasAttribute(attr) {
			continue
		}
		candidates := randomizable(manager, func(a *asset.Asset) bool {
			return a.Type == asset.TypePersonal && !a.IsBodypart() && slices.Contains(a.Properties.Provides, attr)
		})
		p.ctx.shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
		if next, ok := p.tryCandidates(vctx, items, candidates); ok {
			items = next
		}
	}
	return items
}

// tryCandidates returns items with the first candidate, in the given order,
// that keeps the list a valid prefix.
func (p *processor) tryCandidates(vctx validation.Context, items []*item.Item, candidates []*asset.Asset) ([]*item.Item, bool) {
	for _, c := range candidates {
		trial := append(slices.Clip(items), item.New(c, item.NewID()))
		if validation.ValidatePrefix(vctx, trial) == nil {
			return trial, true
		}
	}
	return items, false
}

func randomizable(manager asset.Manager, match func(*asset.Asset) bool) []*asset.Asset {
	var result []*asset.Asset
	for _, a := range manager.Assets() {
		if a.Randomizable && match(a) {
			result = append(result, a)
		}
	}
	return result
}

func providesAny(a *asset.Asset, attributes []string) bool {
	return slices.ContainsFunc(a.Properties.Provides, func(p string) bool { return slices.Contains(attributes, p) })
}

// weightedOrder returns the candidates in random order. Each draw picks an
// asset providing k attributes of wish with weight 1+k.
func (c Context) weightedOrder(candidates []*asset.Asset, wish []string) []*asset.Asset {
	pool := slices.Clone(candidates)
	weights := make([]int, len(pool))
	total := 0
	for i, a := range pool {
		weights[i] = 1
		for _, attr := range a.Properties.Provides {
			if slices.Contains(wish, attr) {
				weights[i]++
			}
		}
		total += weights[i]
	}
	ordered := make([]*asset.Asset, 0, len(pool))
	for len(pool) > 0 {
		r := c.intN(total)
		i := 0
		for r >= weights[i] {
			r -= weights[i]
			i++
		}
		ordered = append(ordered, pool[i])
		total -= weights[i]
		pool = slices.Delete(pool, i, i+1)
		weights = slices.Delete(weights, i, i+1)
	}
	return ordered
}
