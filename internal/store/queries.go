package store

// The three analytical statements plus the slider bootstrap, parameterized
// with pgx named arguments. Ranking order carries an explicit product_name
// tie-break so result order does not depend on physical row order.

const timeRangeQuery = `select min(dt), max(dt) from order_facts left join dates on date_id=id`

const timeSeriesQuery = `
with t as (select country, dt, extract(year from dt) as year, extract(week from dt) as week, sales_amount from order_facts left join dates on date_id=id left join employees using (employee_number) order by dt) select sum(sales_amount)::numeric as sales_amount, min(dt) as dt, year::int, week::int, country from t group by week, year, country;
`

const topProductsQuery = `
SELECT product_name, SUM(sales_amount)::numeric AS sales_amount
FROM order_facts
LEFT JOIN products USING (product_code)
LEFT JOIN dates ON date_id=id
LEFT JOIN employees USING (employee_number)
WHERE dt > @start AND dt < @finish
GROUP BY product_code, product_name
ORDER BY sales_amount DESC, product_name ASC
LIMIT @n;
`

const topProductsByCountryQuery = `
WITH t AS
     (WITH products_per_country AS
         (SELECT country, product_code, product_name, SUM(sales_amount) AS sales_amount
         FROM order_facts
         LEFT JOIN products USING (product_code)
         LEFT JOIN employees USING (employee_number)
         LEFT JOIN dates ON date_id=id
         WHERE dt > @start AND dt < @finish
         GROUP BY product_code, product_name, employees.country)
     SELECT country, product_name, sales_amount, ROW_NUMBER() OVER (PARTITION BY country ORDER BY sales_amount DESC, product_name ASC) AS row_number
     FROM products_per_country)
SELECT country, product_name, sales_amount::numeric, row_number
FROM t
WHERE row_number <= @n
ORDER BY country ASC, row_number ASC
`
