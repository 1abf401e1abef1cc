//go:generate mockgen -source=../profile_store.go   -destination=./mock_profile_store.go   -package=mocks
//go:generate mockgen -source=../profile_fetcher.go -destination=./mock_profile_fetcher.go -package=mocks
//go:generate mockgen -source=../profile_service.go -destination=./mock_profile_service.go -package=mocks
//go:generate mockgen -source=../logger.go          -destination=./mock_logger.go          -package=mocks
//go:generate mockgen -source=../message_consumer.go -destination=./mock_message_consumer.go -package=mocks

package mocks
