package main

import (
	"net/http"

	"github.com/droplink-labs/backend/internal/middleware"
	"github.com/droplink-labs/backend/pkg/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadAll()
	s.loadRouter()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", s.router.Handler())

	httpSrv := &http.Server{
		Addr:    s.configs.ApiServer.Address(),
		Handler: mux,
	}

	s.logger.Infof("Starting api server on %s", httpSrv.Addr)

	var err error
	if cert := s.configs.ApiServer.Cert; cert != "" {
		err = httpSrv.ListenAndServeTLS(cert, s.configs.ApiServer.Key)
	} else {
		err = httpSrv.ListenAndServe()
	}
	if err != nil {
		panic(err)
	}

	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.db, *s.configs, s.logger)
	s.router.Before(middleware.WithStartTime())
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())

	// Public reads.
	router.GET(s.router, "/getDropByID", s.dropDomain.GetDropByID)
	router.GET(s.router, "/getDropIDByKey", s.dropDomain.GetDropIDByKey)

	// Calls the gateway forwards on behalf of a ledger identity.
	callRouter := s.router.Branch()
	callRouter.Before(middleware.Authenticate())
	router.POST(callRouter, "/createNearDrop", s.dropDomain.CreateNearDrop)
	router.POST(callRouter, "/createFTDrop", s.dropDomain.CreateFTDrop)
	router.POST(callRouter, "/createNFTDrop", s.dropDomain.CreateNFTDrop)
	router.POST(callRouter, "/deleteDropByID", s.dropDomain.DeleteDropByID)
	router.POST(callRouter, "/ftOnTransfer", s.dropDomain.FTOnTransfer)
	router.POST(callRouter, "/nftOnApprove", s.dropDomain.NFTOnApprove)
	router.POST(callRouter, "/claimFor", s.claimDomain.ClaimFor)
	router.POST(callRouter, "/createAccountAndClaim", s.claimDomain.CreateAccountAndClaim)

	// Outcome reports from the ledger connector.
	resolveRouter := callRouter.Branch()
	resolveRouter.Before(middleware.OnlyLedgerHost())
	router.POST(resolveRouter, "/resolveClaim", s.claimDomain.ResolveClaim)
	router.POST(resolveRouter, "/resolveAccountCreate", s.claimDomain.ResolveAccountCreate)
}
