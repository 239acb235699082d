// Package covariatesvc serves time covariates over http and NATS request/reply.
package covariatesvc

import (
	"fmt"
	"github.com/nats-io/nats.go"
	logger "log"
	"os"
	"sync"
)

//Conf contains all configurable parameters in covariatesvc
type Conf struct {
	HttpPort       int
	RequestSubject string
	MaxTimestamps  int
}

//StartServices brings up the webservice and, when natsConn is not nil, the NATS covariate request listener.
//Returns after shutting them down on shutdownSignal
func StartServices(log *logger.Logger,
	conf Conf,
	natsConn *nats.Conn,
	shutdownSignal chan os.Signal) error {

	wg := sync.WaitGroup{}

	//create shutdown channels
	webServiceShutdown := make(chan bool, 1)
	requestListenerShutdown := make(chan bool, 1)

	//start all child services
	wg.Add(1)
	go runWebService(log, &wg, conf.MaxTimestamps, conf.HttpPort, webServiceShutdown)

	if natsConn != nil {
		wg.Add(1)
		err := runCovariateRequestListener(log, &wg, natsConn, conf.RequestSubject, conf.MaxTimestamps,
			requestListenerShutdown)
		if err != nil {
			webServiceShutdown <- true
			wg.Wait()
			return fmt.Errorf("unable to establish subscription to nats server: %w", err)
		}
	}

	<-shutdownSignal
	log.Printf("Exiting on shutdown signal, shutting down subroutines")
	webServiceShutdown <- true
	requestListenerShutdown <- true
	wg.Wait()
	log.Printf("Subroutines shut down, exiting covariate service")
	return nil
}
