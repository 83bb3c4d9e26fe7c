//go:generate mockgen -source=../endpoint.go              -destination=./mock_endpoint.go              -package=mocks
//go:generate mockgen -source=../delivery_repository.go   -destination=./mock_delivery_repository.go   -package=mocks
//go:generate mockgen -source=../delivery_cache.go        -destination=./mock_delivery_cache.go        -package=mocks
//go:generate mockgen -source=../logger.go                -destination=./mock_logger.go                -package=mocks
//go:generate mockgen -source=../delivery_read_service.go -destination=./mock_delivery_read_service.go -package=mocks
//go:generate mockgen -source=../delivery_archive.go       -destination=./mock_delivery_archive.go       -package=mocks

package mocks
