// Package telemetry — структурное логирование и метрики.
//
// Логирование настраивается переменными окружения LOG_LEVEL и
// LOG_FORMAT и использует стандартный log/slog. Метрики — prometheus,
// регистрируются на дефолтном registry и отдаются бинарником через
// promhttp.
//
// Логирование — побочный эффект, а не часть контракта ядра: ни один
// компонент не принимает решений по содержимому логов.
package telemetry
