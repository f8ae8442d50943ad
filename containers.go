package bolparser

import (
	"regexp"

	"github.com/samber/lo"
)

var (
	// highCubeRe anchors the container search on the equipment size marker
	// printed next to each container row.
	highCubeRe = regexp.MustCompile(`(?i)(?:40'|40ft)\s+HIGH\s+CUBE`)

	// containerSectionRe captures the container table between its heading and
	// the signature block.
	containerSectionRe = regexp.MustCompile(`(?is)Container Numbers,?\s*Seal(.*?)(?:PLACE AND DATE OF ISSUE|SHIPPED ON BOARD|FREIGHT & CHARGES)`)

	containerCandidateRe = regexp.MustCompile(`([A-Z]{4}\d{7})`)

	// bolPrefixRe matches document-number prefixes of the template's carrier,
	// which share the ISO 6346 shape with container numbers.
	bolPrefixRe = regexp.MustCompile(`^(MEDU|MSCU|MAEU|EDUP)`)

	containerEvidenceRe = regexp.MustCompile(`(?i)HIGH\s+CUBE|CONTAINER|SEAL|PALLET|40'|40FT|20'|20FT`)
)

// extractContainers collects the container entries in document order. The
// size-marker anchors are tried first; the container table section is the
// fallback. An empty result is the normal outcome for documents without a
// container block.
func extractContainers(pages []page, bolNumber string) []Container {
	var containers []Container

	for _, pg := range pages {
		for _, anchor := range highCubeRe.FindAllStringIndex(pg.text, -1) {
			start := max(0, anchor[0]-200)
			end := min(len(pg.text), anchor[1]+200)
			containers = append(containers, containersIn(pg.text[start:end])...)
		}
	}

	if len(containers) == 0 {
		for _, pg := range pages {
			if matches := containerSectionRe.FindStringSubmatch(pg.text); len(matches) > 1 {
				containers = append(containers, containersIn(matches[1])...)
			}
		}
	}

	return filterContainers(containers, bolNumber)
}

// containersIn finds every container-shaped number in the text and builds an
// entry from the surrounding snippet.
func containersIn(text string) []Container {
	var containers []Container
	for _, m := range containerCandidateRe.FindAllStringSubmatchIndex(text, -1) {
		number := text[m[2]:m[3]]
		start := max(0, m[2]-100)
		end := min(len(text), m[3]+200)
		containers = append(containers, containerFromContext(number, text[start:end]))
	}
	return containers
}

func containerFromContext(number, context string) Container {
	return Container{
		ContainerNumber: number,
		// The colon keeps the "Seal Numbers and Marks" column heading from
		// matching as a seal value.
		SealNumber: extractField(context, []string{
			`(?i)Seal\s*(?:Number|No\.?)?\s*:\s*(\w+)`,
		}),
		PackageCount: extractField(context, []string{
			`(?i)(\d+)\s+(?:PALLETS?|PKGS|PACKAGES)`,
		}),
		Weight: extractField(context, []string{
			`(?i)(\d+[\.,]\d+)\s*(?:kgs|kg)`,
		}),
		Context: context,
	}
}

// filterContainers removes false positives and duplicates while preserving
// document order.
func filterContainers(containers []Container, bolNumber string) []Container {
	kept := lo.Filter(containers, func(c Container, _ int) bool {
		if bolNumber != "" && c.ContainerNumber == bolNumber {
			return false
		}
		if bolPrefixRe.MatchString(c.ContainerNumber) {
			return false
		}
		if c.Validate() != nil {
			return false
		}
		return containerEvidenceRe.MatchString(c.Context)
	})
	return lo.UniqBy(kept, func(c Container) string { return c.ContainerNumber })
}
