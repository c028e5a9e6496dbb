package extract

import (
	"github.com/JakeFAU/prosettings-sheet/internal/page"
	"github.com/JakeFAU/prosettings-sheet/internal/profile"
)

// DefaultFields matches the prosettings.net player page layout.
func DefaultFields() Fields {
	return Fields{
		Name: Field{
			Name:     "name",
			Required: true,
			Locators: []page.Locator{
				{XPath: "//div[@class='name']/h1"},
			},
		},
		Brightness: Field{
			Name:    "BFI",
			Default: profile.BrightnessUnknown,
			Locators: []page.Locator{
				{XPath: "//tr[@class='format-select field-dyac']/td"},
				{XPath: "//tr[@class='format-select field-dyac unknown']/td"},
			},
		},
		Sensitivity: Field{
			Name:     "eDPI",
			Required: true,
			Locators: []page.Locator{
				{XPath: "//tr[@class='format-number field-edpi']/td"},
			},
		},
		Accessory: Field{
			Name:     "mousepad",
			Required: true,
			Locators: []page.Locator{
				{XPath: "//div[contains(@class, 'cta-box') and ./div[@class='cta-box__tag cta-box__tag--top-right' and text()='Mousepad']]//h4/a"},
			},
		},
		Outline: Field{
			Name:    "outline",
			Default: profile.OutlineUnknown,
			Locators: []page.Locator{
				{XPath: "//tr[@class='format-select field-enemyhighlightcolor']/td"},
				{XPath: "//tr[@class='format-select field-enemyhighlightcolor unknown']/td"},
			},
		},
	}
}
