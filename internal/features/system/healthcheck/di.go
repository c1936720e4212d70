package system_healthcheck

var healthcheckService = &HealthcheckService{}

var healthcheckController = &HealthcheckController{
	healthcheckService,
}

func GetHealthcheckController() *HealthcheckController {
	return healthcheckController
}
