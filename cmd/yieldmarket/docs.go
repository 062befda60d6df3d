package main

//go:generate swag init -g cmd/yieldmarket/main.go -o docs

// @title           Yield Market API
// @version         0.1.0
// @description     Deposit pools, yield strategies, yield token receipts and the yield token marketplace.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
