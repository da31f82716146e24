package models

// All lists every persisted model in dependency order, for AutoMigrate in dev mode and tests.
func All() []any {
	return []any{
		&Shop{},
		&Product{},
		&Service{},
		&Hairdresser{},
		&Promotion{},
		&Sale{},
		&SaleProduct{},
		&SaleService{},
		&OutboxEvent{},
	}
}
