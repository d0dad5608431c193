package ui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/thanhnguyen2187/d2-savior/d2s"
	"github.com/thanhnguyen2187/d2-savior/d2s/ditem"
	"github.com/thanhnguyen2187/d2-savior/d2s/dprop"
	"github.com/thanhnguyen2187/d2-savior/d2s/dstash"
)

func joinNonEmpty(parts ...string) string {
	parts = lo.Filter(parts, func(part string, _ int) bool {
		return part != ""
	})
	return strings.Join(parts, " ")
}

// DisplayName is the name the game would show for item.
func DisplayName(item ditem.Item) string {
	switch {
	case item.Ear != nil:
		return item.Ear.Name + "'s Ear"
	case item.PersonalizedName != "":
		return item.PersonalizedName + "'s " + lo.Ternary(item.UniqueName != "", item.UniqueName, item.TypeName)
	case item.RunewordName != "":
		return item.RunewordName
	case item.UniqueName != "":
		return item.UniqueName
	case item.SetName != "":
		return item.SetName
	case item.RareName != "" || item.RareName2 != "":
		return joinNonEmpty(item.RareName, item.RareName2)
	case item.MagicPrefixName != "" || item.MagicSuffixName != "":
		return joinNonEmpty(item.MagicPrefixName, item.TypeName, item.MagicSuffixName)
	case item.TypeName != "":
		return item.TypeName
	}
	return item.Type
}

func describeProperty(property dprop.Property) string {
	name := lo.Ternary(property.Name != "", property.Name, fmt.Sprintf("stat %d", property.ID))
	values := lo.Map(property.Values, func(value int, _ int) string {
		return humanize.Comma(int64(value))
	})
	return name + " " + strings.Join(values, "/")
}

func SaveTitle(save d2s.Save) string {
	header := save.Header
	title := fmt.Sprintf(
		"%s, level %d %s, %s gold",
		header.Name,
		header.Level,
		header.ClassName,
		humanize.Comma(int64(save.Attributes.Gold)),
	)
	if save.IsDead() {
		title += fmt.Sprintf(", %d %s", len(save.Corpses), lo.Ternary(len(save.Corpses) == 1, "corpse", "corpses"))
	}
	return title
}

func StashTitle(stash dstash.Stash) string {
	switch stash.Format {
	case dstash.FormatSectored:
		return fmt.Sprintf("%s stash, %d sectors", stash.Format, len(stash.Sectors))
	case dstash.FormatFlat:
		return fmt.Sprintf("%s stash", stash.Format)
	}
	return fmt.Sprintf(
		"%s stash, %d pages, %s gold",
		stash.Format,
		len(stash.Pages),
		humanize.Comma(int64(stash.SharedGold)),
	)
}
