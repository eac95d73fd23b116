package models

// All lists every persistence model, in dependency order, for AutoMigrate in
// tests and development databases. Production schemas come from migrations/.
func All() []any {
	return []any{
		&UserModel{},
		&PersonalAccessTokenModel{},
		&ProjectModel{},
		&ACLEntryModel{},
		&ExperimentModel{},
		&ConfoundingVariableModel{},
		&ConfoundingLevelModel{},
		&BatchModel{},
		&SampleModel{},
		&SampleStatisticModel{},
		&QualityControlModel{},
		&NGSMeasurementModel{},
		&PxPMeasurementModel{},
		&MeasurementSampleModel{},
		&RawDataModel{},
		&OfferModel{},
		&OntologyTermModel{},
		&EmailJobModel{},
	}
}
