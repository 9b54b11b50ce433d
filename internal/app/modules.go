package app

import (
	"time"

	"golang.org/x/text/language"

	"github.com/clinicportal/clinicportal/internal/apiclient"
	"github.com/clinicportal/clinicportal/internal/billing"
	"github.com/clinicportal/clinicportal/internal/feature"
	"github.com/clinicportal/clinicportal/internal/history"
	"github.com/clinicportal/clinicportal/internal/inventory"
	"github.com/clinicportal/clinicportal/internal/nursing"
	"github.com/clinicportal/clinicportal/internal/orders"
	"github.com/clinicportal/clinicportal/internal/patients"
	"github.com/clinicportal/clinicportal/internal/users"
)

// BuildModules constructs every feature module handler in menu order and
// installs the matching menu on deps.
func BuildModules(deps *feature.Deps, api *apiclient.Client, cfg *Config) []feature.Mountable {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	tag := language.AmericanEnglish
	if cfg != nil && cfg.BillingLocale != "" {
		if parsed, err := language.Parse(cfg.BillingLocale); err == nil {
			tag = parsed
		}
	}

	mods := []feature.Mountable{
		feature.NewHandler(deps, patients.NewModule(api, now)),
		feature.NewHandler(deps, orders.NewModule(api)),
		feature.NewHandler(deps, history.NewModule(api)),
		feature.NewHandler(deps, nursing.NewVitalsModule(api)),
		feature.NewHandler(deps, nursing.NewAdministrationModule(api, now)),
		feature.NewHandler(deps, nursing.NewRealizationModule(api, now)),
		feature.NewHandler(deps, billing.NewModule(api, billing.NewMoney(tag))),
		feature.NewHandler(deps, users.NewModule(api, now)),
	}
	for _, m := range inventory.NewModules(api) {
		mods = append(mods, feature.NewHandler(deps, m))
	}

	entries := make([]feature.Entry, 0, len(mods))
	for _, m := range mods {
		entries = append(entries, m.Entry())
	}
	deps.Menu = feature.NewMenu(entries...)
	return mods
}
