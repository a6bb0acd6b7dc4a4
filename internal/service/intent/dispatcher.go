package intent

import (
	"strings"

	"github.com/seu-repo/voxmart/internal/domain"
)

// EntitySubject is the canonical entity kind for a product mention.
const EntitySubject = "subject"

// EntityOrderID carries the order number attached to a checkout response.
const EntityOrderID = "order_id"

// rule maps one intent to an action constructor. requires names an entity
// kind that must be present; when it is missing the dispatch is a no-op.
type rule struct {
	requires string
	build    func(entities map[string]string) domain.Action
}

// Dispatcher maps recognized intents to client actions. The table is static;
// dispatching never fails, unknown intents simply produce no action.
type Dispatcher struct {
	table map[string]rule
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		table: map[string]rule{
			"search_product": {
				requires: EntitySubject,
				build: func(e map[string]string) domain.Action {
					return domain.SetSearchTerm(e[EntitySubject])
				},
			},
			// The cart mutation happens server side. The client stays put.
			"add_to_cart": {
				requires: EntitySubject,
				build: func(e map[string]string) domain.Action {
					return domain.NoAction()
				},
			},
			"view_cart": {
				build: func(e map[string]string) domain.Action {
					return domain.NavigateTo(domain.ScreenCart, nil)
				},
			},
			"view_orders": {
				build: func(e map[string]string) domain.Action {
					return domain.NavigateTo(domain.ScreenOrders, nil)
				},
			},
			"checkout": {
				build: func(e map[string]string) domain.Action {
					if id, ok := e[EntityOrderID]; ok && id != "" {
						return domain.NavigateTo(domain.ScreenOrderDetail, map[string]string{EntityOrderID: id})
					}
					return domain.NavigateTo(domain.ScreenOrders, nil)
				},
			},
			"greet": {
				build: func(e map[string]string) domain.Action {
					return domain.NoAction()
				},
			},
		},
	}
}

// Dispatch resolves an intent name and entity list to an action. The first
// entity of each kind wins; later duplicates are ignored.
func (d *Dispatcher) Dispatch(intentName string, entities []domain.Entity) domain.Action {
	r, ok := d.table[intentName]
	if !ok {
		return domain.NoAction()
	}

	byKind := make(map[string]string, len(entities))
	for _, e := range entities {
		kind := strings.TrimSpace(e.Kind)
		if _, seen := byKind[kind]; !seen {
			byKind[kind] = e.Value
		}
	}

	if r.requires != "" {
		if v, ok := byKind[r.requires]; !ok || strings.TrimSpace(v) == "" {
			return domain.NoAction()
		}
	}

	return r.build(byKind)
}
