package cli

import (
	"github.com/dustin/go-humanize"
	"github.com/iancoleman/orderedmap"
	"github.com/samber/lo"
	"github.com/thanhnguyen2187/d2-savior/d2s"
	"github.com/thanhnguyen2187/d2-savior/d2s/dheader"
	"github.com/thanhnguyen2187/d2-savior/d2s/ditem"
	"github.com/thanhnguyen2187/d2-savior/d2s/dstash"
)

func summarizeSave(summary *orderedmap.OrderedMap, save d2s.Save, bs []byte) {
	header := save.Header
	summary.Set("name", header.Name)
	summary.Set("class", header.ClassName)
	summary.Set("level", header.Level)
	summary.Set("version", header.Version)
	summary.Set("expansion", header.Status.Expansion)
	summary.Set("hardcore", header.Status.Hardcore)
	summary.Set("dead", save.IsDead())
	summary.Set("experience", humanize.Comma(int64(save.Attributes.Experience)))
	summary.Set("gold", humanize.Comma(int64(save.Attributes.Gold)))
	summary.Set("stashed_gold", humanize.Comma(int64(save.Attributes.StashedGold)))
	summary.Set("items", ditem.CountAll(save.Items))
	summary.Set("corpses", len(save.Corpses))
	summary.Set("merc_items", ditem.CountAll(save.MercItems))
	summary.Set("golem_item", save.GolemItem != nil)
	if len(save.Absent) > 0 {
		summary.Set("absent", save.Absent)
	}
	valid, err := dheader.Verify(bs)
	summary.Set("checksum_valid", err == nil && valid)
}

func summarizeStash(summary *orderedmap.OrderedMap, stash dstash.Stash) {
	summary.Set("format", stash.Format)
	switch {
	case len(stash.Sectors) > 0:
		summary.Set("sectors", len(stash.Sectors))
		gold := lo.SumBy(stash.Sectors, func(sector dstash.Sector) uint32 {
			return sector.Gold
		})
		summary.Set("gold", humanize.Comma(int64(gold)))
	case stash.Flat != nil:
		summary.Set("version", stash.Flat.Version)
	default:
		summary.Set("version", stash.Version)
		summary.Set("shared_gold", humanize.Comma(int64(stash.SharedGold)))
		summary.Set(
			"pages",
			lo.Map(stash.Pages, func(page dstash.Page, _ int) string {
				return page.Name
			}),
		)
	}
	summary.Set("items", ditem.CountAll(stash.Items()))
}

// Summarize lists the interesting facts of a decoded file, in a fixed order.
func Summarize(path string, bs []byte, doc Document) *orderedmap.OrderedMap {
	summary := orderedmap.New()
	summary.Set("path", path)
	summary.Set("size", humanize.Bytes(uint64(len(bs))))
	summary.Set("kind", doc.Kind)
	switch {
	case doc.Save != nil:
		summarizeSave(summary, *doc.Save, bs)
	case doc.Stash != nil:
		summarizeStash(summary, *doc.Stash)
	case doc.Item != nil:
		summary.Set("type", doc.Item.Type)
		summary.Set("type_name", doc.Item.TypeName)
		summary.Set("quality", doc.Item.Quality.String())
		summary.Set("socketed_items", ditem.CountAll(doc.Item.SocketedItems))
	}
	return summary
}
