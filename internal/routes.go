package internal

import (
	"net/http"
	"vihub/internal/controllers"
	"vihub/internal/providers"
)

func InitRoutes(patientController *controllers.PatientController, reconciliationController *controllers.ReconciliationController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/patients", http.HandlerFunc(patientController.List))
	routers.Post("/patients", http.HandlerFunc(patientController.Create))
	routers.Put("/patients", http.HandlerFunc(patientController.Update))
	routers.Delete("/patients", http.HandlerFunc(patientController.Delete))
	routers.Get("/patients/photo", http.HandlerFunc(patientController.Photo))
	routers.Put("/patients/biometrics", http.HandlerFunc(patientController.EditBiometric))

	routers.Get("/beneficiaries", http.HandlerFunc(reconciliationController.SearchBeneficiaries))
	routers.Post("/import/card", http.HandlerFunc(reconciliationController.ImportCard))
	routers.Post("/import/beneficiary", http.HandlerFunc(reconciliationController.ImportBeneficiary))
	routers.Post("/sync", http.HandlerFunc(reconciliationController.Sync))
	routers.Post("/sync/all", http.HandlerFunc(reconciliationController.SyncAll))
	return routers
}
