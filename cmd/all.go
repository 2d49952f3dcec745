package cmd

import (
	_ "workshop-host/cmd/bootstrap"
	_ "workshop-host/cmd/layer"
	_ "workshop-host/cmd/root"
	_ "workshop-host/cmd/run"
	_ "workshop-host/cmd/server"
	_ "workshop-host/cmd/service"
)
